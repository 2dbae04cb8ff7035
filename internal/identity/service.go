// Package identity provides registration, authentication and user
// administration for the storefront.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bissquit/bookery/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator issues session tokens for authenticated users.
type Authenticator interface {
	GenerateToken(ctx context.Context, userID string) (string, error)
}

// UserCreatedHandler is an optional hook invoked after registration.
// Notification delivery lives outside this service; a failing hook is
// logged and never fails the registration itself.
type UserCreatedHandler interface {
	OnUserCreated(ctx context.Context, user *domain.User) error
}

// Service implements identity business logic.
type Service struct {
	repo          Repository
	authenticator Authenticator
	onUserCreated UserCreatedHandler
}

// NewService creates a new identity service. onUserCreated may be nil.
func NewService(repo Repository, authenticator Authenticator, onUserCreated UserCreatedHandler) *Service {
	return &Service{
		repo:          repo,
		authenticator: authenticator,
		onUserCreated: onUserCreated,
	}
}

// RegisterInput holds data for self-service registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
}

// Register creates a new account at the lowest privilege level.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)

	taken, err := s.repo.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailExists
	}

	passwordHash, err := hashSecret(input.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := hashSecret(input.Answer)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: passwordHash,
		AnswerHash:   answerHash,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         domain.RoleCustomer,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.fireUserCreated(ctx, user)

	return user, nil
}

// Login verifies credentials and issues a session token. Unknown email
// and wrong password both come back as ErrInvalidCredentials so the
// response does not confirm which part failed.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !checkSecret(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.authenticator.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// ResetPasswordInput holds data for the forgot-password flow.
type ResetPasswordInput struct {
	Email       string
	Answer      string
	NewPassword string
}

// ResetPassword sets a new password when email and security answer match.
func (s *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return ErrResetMismatch
	}

	if !checkSecret(input.Answer, user.AnswerHash) {
		return ErrResetMismatch
	}

	passwordHash, err := hashSecret(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateProfileInput holds self-service profile changes. Empty fields
// keep their current value.
type UpdateProfileInput struct {
	Name     string
	Password string
	Phone    string
	Address  string
}

// UpdateProfile applies a self-service update to the caller's record.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.Password != "" {
		passwordHash, err := hashSecret(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// GetUserByID fetches a single user. Also serves the auth middleware's
// per-request role re-read.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns all users for the admin back office.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUserInput holds data for administrative account creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
	Role     domain.Role
}

// CreateUser creates an account on behalf of an administrator. The new
// role is capped structurally: it may not exceed the caller's own.
func (s *Service) CreateUser(ctx context.Context, callerRole domain.Role, input CreateUserInput) (*domain.User, error) {
	role := input.Role.Normalize()
	if role > callerRole.Normalize() {
		return nil, ErrRoleTooHigh
	}

	user, err := s.Register(ctx, RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
		Address:  input.Address,
		Answer:   input.Answer,
	})
	if err != nil {
		return nil, err
	}

	if role != domain.RoleCustomer {
		user.Role = role
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("assign role: %w", err)
		}
	}

	return user, nil
}

// AdminUpdateInput holds an administrative update. Nil/empty fields keep
// their current value.
type AdminUpdateInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Role     *domain.Role
}

// UpdateUser applies an administrative update to any user, including the
// role. Changing the email to one owned by a different user is rejected,
// as is lowering one's own role.
func (s *Service) UpdateUser(ctx context.Context, callerID, targetID string, input AdminUpdateInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		email := normalizeEmail(input.Email)
		if email != user.Email {
			taken, err := s.repo.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if taken {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}

	if input.Role != nil {
		newRole := input.Role.Normalize()
		if targetID == callerID && newRole < user.Role.Normalize() {
			return nil, ErrSelfDemote
		}
		user.Role = newRole
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.Password != "" {
		passwordHash, err := hashSecret(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account. A caller can never delete themselves,
// regardless of role.
func (s *Service) DeleteUser(ctx context.Context, callerID, targetID string) error {
	if callerID == targetID {
		return ErrSelfDelete
	}
	return s.repo.DeleteUser(ctx, targetID)
}

func (s *Service) fireUserCreated(ctx context.Context, user *domain.User) {
	if s.onUserCreated == nil {
		return
	}
	if err := s.onUserCreated.OnUserCreated(ctx, user); err != nil {
		slog.Warn("user created hook failed", "user_id", user.ID, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashSecret(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func checkSecret(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
