package catalog

import (
	"context"

	"github.com/bissquit/bookery/internal/domain"
)

// ProductFilter narrows product listings. Keyword matches name and
// description case-insensitively.
type ProductFilter struct {
	CategoryID *string
	Keyword    *string
}

// Repository defines the interface for catalog data operations.
type Repository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// DecrementQuantity reduces remaining stock by qty, failing with
	// ErrOutOfStock when not enough is left.
	DecrementQuantity(ctx context.Context, productID string, qty int) error

	CountProducts(ctx context.Context) (int, error)
}
