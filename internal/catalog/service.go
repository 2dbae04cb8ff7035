// Package catalog manages the product and category listings of the
// storefront.
package catalog

import (
	"context"
	"fmt"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/bissquit/bookery/internal/pkg/slug"
)

// Service implements catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCategory creates a new category; the slug derives from the name.
func (s *Service) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{
		Name: name,
		Slug: slug.From(name),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategoryBySlug fetches a single category.
func (s *Service) GetCategoryBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	return s.repo.GetCategoryBySlug(ctx, categorySlug)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// UpdateCategory renames a category. The slug follows the new name.
func (s *Service) UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slug.From(name)
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// ProductInput holds data for product creation and update.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	Shipping    bool
	CategoryID  string
}

// CreateProduct creates a new product; the slug derives from the name.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.repo.GetCategoryByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	product := &domain.Product{
		Name:        input.Name,
		Slug:        slug.From(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Shipping:    input.Shipping,
		CategoryID:  input.CategoryID,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProductBySlug fetches a single product.
func (s *Service) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	return s.repo.GetProductBySlug(ctx, productSlug)
}

// GetProductByID fetches a single product by id. Also used by checkout
// to snapshot prices.
func (s *Service) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

// ListProducts returns products, optionally narrowed to one category.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// UpdateProduct applies a full update to a product. The slug follows the
// new name.
func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != product.CategoryID {
		if _, err := s.repo.GetCategoryByID(ctx, input.CategoryID); err != nil {
			return nil, fmt.Errorf("resolve category: %w", err)
		}
	}

	product.Name = input.Name
	product.Slug = slug.From(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.Quantity = input.Quantity
	product.Shipping = input.Shipping
	product.CategoryID = input.CategoryID

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// DecrementQuantity reduces stock after a sale.
func (s *Service) DecrementQuantity(ctx context.Context, productID string, qty int) error {
	return s.repo.DecrementQuantity(ctx, productID, qty)
}

// CountProducts returns the number of products in the catalog.
func (s *Service) CountProducts(ctx context.Context) (int, error) {
	return s.repo.CountProducts(ctx)
}
