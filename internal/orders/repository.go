package orders

import (
	"context"

	"github.com/bissquit/bookery/internal/domain"
)

// Repository defines the interface for order data operations.
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByBuyer returns a buyer's orders, newest first.
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)

	// ListAll returns every order, newest first.
	ListAll(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus stores the literal status string as given.
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}
