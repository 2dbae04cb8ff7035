package domain

import (
	"strings"
	"time"
)

// OrderStatus is the normalized fulfillment stage of an order.
type OrderStatus string

// Order statuses.
const (
	OrderStatusNotProcess OrderStatus = "not-process"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// statusSynonyms maps legacy spellings found in stored orders to their
// canonical status. Writers preserve the literal value; readers fold it.
var statusSynonyms = map[string]OrderStatus{
	"not-process": OrderStatusNotProcess,
	"processing":  OrderStatusProcessing,
	"shipped":     OrderStatusShipped,
	"delivered":   OrderStatusDelivered,
	"deliverd":    OrderStatusDelivered,
	"cancelled":   OrderStatusCancelled,
	"cancel":      OrderStatusCancelled,
}

// ParseOrderStatus folds a raw status string, including legacy spellings,
// into the closed status set. ok is false for anything unknown.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// IsTerminal reports whether the status ends the order's lifecycle.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderItem is a line item carrying the price snapshot taken at checkout.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Transaction is the opaque record returned by the payment gateway.
type Transaction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Amount *float64 `json:"amount,omitempty"`
	Total  *float64 `json:"total,omitempty"`
}

// settledStatuses are gateway transaction states that count as funds
// settled even when the success flag disagrees transiently.
var settledStatuses = map[string]bool{
	"submitted_for_settlement": true,
	"settling":                 true,
	"settled":                  true,
}

// Payment is the gateway result attached to an order at creation. It is
// written once and never mutated by status transitions.
type Payment struct {
	Success     bool        `json:"success"`
	Amount      *float64    `json:"amount,omitempty"`
	Transaction Transaction `json:"transaction"`
}

// Settled reports whether the order counts as paid: either the gateway's
// success flag or a settled transaction status suffices.
func (p Payment) Settled() bool {
	return p.Success || settledStatuses[p.Transaction.Status]
}

// Order is a placed purchase. Status holds the literal value as written,
// including legacy spellings; use NormalizedStatus for business logic.
type Order struct {
	ID        string      `json:"id"`
	BuyerID   string      `json:"buyer_id"`
	Items     []OrderItem `json:"items"`
	Payment   Payment     `json:"payment"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NormalizedStatus folds the stored status into the closed set.
// Unknown values normalize to not-process.
func (o *Order) NormalizedStatus() OrderStatus {
	if s, ok := ParseOrderStatus(o.Status); ok {
		return s
	}
	return OrderStatusNotProcess
}

// Amount resolves the order's monetary amount: transaction amount, then
// payment amount, then transaction total, then the line-item sum.
func (o *Order) Amount() float64 {
	if o.Payment.Transaction.Amount != nil {
		return *o.Payment.Transaction.Amount
	}
	if o.Payment.Amount != nil {
		return *o.Payment.Amount
	}
	if o.Payment.Transaction.Total != nil {
		return *o.Payment.Transaction.Total
	}
	var sum float64
	for _, item := range o.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}
