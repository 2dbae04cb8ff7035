// Package postgres provides PostgreSQL implementation of the orders repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/bissquit/bookery/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the orders.Repository interface using PostgreSQL.
// Payment results are stored as jsonb so unknown gateway fields survive
// round trips.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts an order and its line items in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	payment, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("marshal payment: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	query := `
		INSERT INTO orders (buyer_id, payment, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		order.BuyerID,
		payment,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			order.ID, item.ProductID, item.Name, item.Price, item.Quantity,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order with its line items.
func (r *Repository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, buyer_id, payment, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	order, err := r.scanOrder(r.db.QueryRow(ctx, query, id), "get order by id")
	if err != nil {
		return nil, err
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListByBuyer retrieves a buyer's orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	query := `
		SELECT id, buyer_id, payment, status, created_at, updated_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`
	return r.listOrders(ctx, query, buyerID)
}

// ListAll retrieves every order, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT id, buyer_id, payment, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`
	return r.listOrders(ctx, query)
}

// UpdateStatus stores the literal status string and returns the updated
// order. The payment column is untouched.
func (r *Repository) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, buyer_id, payment, status, created_at, updated_at
	`
	order, err := r.scanOrder(r.db.QueryRow(ctx, query, orderID, status), "update order status")
	if err != nil {
		return nil, err
	}

	items, err := r.getOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *Repository) listOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		var payment []byte
		err := rows.Scan(
			&order.ID,
			&order.BuyerID,
			&payment,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(payment, &order.Payment); err != nil {
			return nil, fmt.Errorf("unmarshal payment: %w", err)
		}
		list = append(list, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range list {
		items, err := r.getOrderItems(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		list[i].Items = items
	}

	return list, nil
}

func (r *Repository) getOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT product_id, name, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *Repository) scanOrder(row pgx.Row, op string) (*domain.Order, error) {
	var order domain.Order
	var payment []byte
	err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&payment,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(payment, &order.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	return &order, nil
}
