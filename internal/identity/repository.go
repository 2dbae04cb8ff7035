package identity

import (
	"context"

	"github.com/bissquit/bookery/internal/domain"
)

// Repository defines the interface for user data operations.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]domain.User, error)

	// EmailTaken reports whether another user (any user when excludeID is
	// empty) already owns the email.
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
}
