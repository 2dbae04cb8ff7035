// Package orders implements checkout and the order lifecycle.
package orders

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/bissquit/bookery/internal/pkg/ctxlog"
	"github.com/bissquit/bookery/internal/pkg/metrics"
)

// PaymentGateway charges the buyer at checkout.
type PaymentGateway interface {
	// ClientToken issues a token the storefront client uses to tokenize
	// payment details.
	ClientToken(ctx context.Context) (string, error)

	// Sale charges the given amount. A declined charge returns a Payment
	// with Success false and no error; err is reserved for transport
	// failures.
	Sale(ctx context.Context, amount float64, nonce string) (*domain.Payment, error)
}

// ProductSource resolves products for price snapshots and adjusts stock.
type ProductSource interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	DecrementQuantity(ctx context.Context, productID string, qty int) error
}

// OrderEventHandler is an optional hook invoked after an order is placed
// or its status changes. Delivery lives outside this service; a failing
// hook is logged and never fails the operation itself.
type OrderEventHandler interface {
	OnOrderPlaced(ctx context.Context, order *domain.Order) error
	OnOrderStatusChanged(ctx context.Context, order *domain.Order) error
}

// Service implements order business logic.
type Service struct {
	repo     Repository
	products ProductSource
	gateway  PaymentGateway
	events   OrderEventHandler
}

// NewService creates a new orders service. events may be nil.
func NewService(repo Repository, products ProductSource, gateway PaymentGateway, events OrderEventHandler) *Service {
	return &Service{
		repo:     repo,
		products: products,
		gateway:  gateway,
		events:   events,
	}
}

// ClientToken issues a gateway client token.
func (s *Service) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// CartItem is one checkout line as submitted by the client.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Checkout charges the cart and records the order. The order is created
// even when the charge is declined; Payment.Settled decides later
// whether it counts as paid. Line items snapshot the catalog price at
// this moment.
func (s *Service) Checkout(ctx context.Context, buyerID string, cart []CartItem, nonce string) (*domain.Order, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart))
	var total float64
	for _, line := range cart {
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", line.ProductID, err)
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  qty,
		})
		total += product.Price * float64(qty)
	}

	payment, err := s.gateway.Sale(ctx, total, nonce)
	if err != nil {
		return nil, fmt.Errorf("charge payment: %w", err)
	}

	order := &domain.Order{
		BuyerID: buyerID,
		Items:   items,
		Payment: *payment,
		Status:  string(domain.OrderStatusNotProcess),
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Stock adjustment is best effort; the order already exists.
	for _, item := range items {
		if err := s.products.DecrementQuantity(ctx, item.ProductID, item.Quantity); err != nil {
			ctxlog.FromContext(ctx).Warn("failed to decrement stock",
				"order_id", order.ID, "product_id", item.ProductID, "error", err)
		}
	}

	metrics.CheckoutsTotal.WithLabelValues(strconv.FormatBool(order.Payment.Settled())).Inc()

	if s.events != nil {
		if err := s.events.OnOrderPlaced(ctx, order); err != nil {
			ctxlog.FromContext(ctx).Warn("order placed hook failed", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}

// ListByBuyer returns the buyer's own orders, newest first.
func (s *Service) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

// ListAll returns every order for the back office, newest first.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus sets an order's status. The raw value must fold into the
// known status set, legacy spellings included, but is stored verbatim.
// Any transition between known statuses is allowed, backwards ones too.
func (s *Service) UpdateStatus(ctx context.Context, orderID, raw string) (*domain.Order, error) {
	normalized, ok := domain.ParseOrderStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}

	order, err := s.repo.UpdateStatus(ctx, orderID, raw)
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusUpdatesTotal.WithLabelValues(string(normalized)).Inc()

	if s.events != nil {
		if err := s.events.OnOrderStatusChanged(ctx, order); err != nil {
			ctxlog.FromContext(ctx).Warn("order status hook failed", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}
