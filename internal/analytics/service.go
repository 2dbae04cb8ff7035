// Package analytics aggregates storefront activity for the back office.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/bookery/internal/domain"
)

// OrderSource supplies the orders snapshot.
type OrderSource interface {
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// UserSource supplies the users snapshot.
type UserSource interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ProductSource supplies catalog counts.
type ProductSource interface {
	CountProducts(ctx context.Context) (int, error)
}

// Summary is a point-in-time aggregation over orders, users and the
// catalog. Sales figures count settled payments only; unpaid orders
// contribute to order counts but never to revenue.
type Summary struct {
	TotalOrders   int            `json:"total_orders"`
	PaidOrders    int            `json:"paid_orders"`
	UnpaidOrders  int            `json:"unpaid_orders"`
	TotalSales    float64        `json:"total_sales"`
	TodayOrders   int            `json:"today_orders"`
	TodaySales    float64        `json:"today_sales"`
	TotalUsers    int            `json:"total_users"`
	UsersByRole   map[string]int `json:"users_by_role"`
	TotalProducts int            `json:"total_products"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// Service computes analytics summaries.
type Service struct {
	orders   OrderSource
	users    UserSource
	products ProductSource
	now      func() time.Time
}

// NewService creates a new analytics service.
func NewService(orders OrderSource, users UserSource, products ProductSource) *Service {
	return &Service{
		orders:   orders,
		users:    users,
		products: products,
		now:      time.Now,
	}
}

// Summarize builds a summary from the current data. Today's bucket
// starts at local midnight.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summary := &Summary{
		UsersByRole: make(map[string]int),
		GeneratedAt: now,
	}

	for i := range orders {
		order := &orders[i]
		summary.TotalOrders++

		paid := order.Payment.Settled()
		if paid {
			summary.PaidOrders++
			summary.TotalSales += order.Amount()
		} else {
			summary.UnpaidOrders++
		}

		if !order.CreatedAt.Before(midnight) {
			summary.TodayOrders++
			if paid {
				summary.TodaySales += order.Amount()
			}
		}
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	summary.TotalUsers = len(users)
	for i := range users {
		summary.UsersByRole[users[i].Role.Normalize().String()]++
	}

	count, err := s.products.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	summary.TotalProducts = count

	return summary, nil
}
