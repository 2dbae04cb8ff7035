// Package sandbox provides a payment gateway that approves every charge.
// It stands in for a real processor in development and tests.
package sandbox

import (
	"context"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/google/uuid"
)

// Gateway is an auto-settling fake processor. Every sale succeeds and
// reports submitted_for_settlement, the state a freshly approved charge
// sits in before funds move.
type Gateway struct{}

// NewGateway creates a new sandbox gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

// ClientToken issues a random token. The sandbox accepts any nonce, so
// the token only needs to be unique.
func (g *Gateway) ClientToken(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// Sale approves the charge unconditionally.
func (g *Gateway) Sale(_ context.Context, amount float64, _ string) (*domain.Payment, error) {
	amt := amount
	return &domain.Payment{
		Success: true,
		Amount:  &amt,
		Transaction: domain.Transaction{
			ID:     uuid.NewString(),
			Status: "submitted_for_settlement",
			Amount: &amt,
		},
	}, nil
}
