package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User
	nextID        int
	createUserErr error
	deletedIDs    []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.users[user.Email] = user
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	for email, u := range m.users {
		if u.ID == user.ID {
			if email != user.Email {
				delete(m.users, email)
			}
			m.users[user.Email] = user
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *mockRepository) DeleteUser(_ context.Context, id string) error {
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			m.deletedIDs = append(m.deletedIDs, id)
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *mockRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockRepository) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	u, ok := m.users[email]
	if !ok {
		return false, nil
	}
	return excludeID == "" || u.ID != excludeID, nil
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct{}

func (m *mockAuthenticator) GenerateToken(_ context.Context, userID string) (string, error) {
	return "token-for-" + userID, nil
}

// mockUserCreatedHandler implements UserCreatedHandler for testing.
type mockUserCreatedHandler struct {
	called       bool
	receivedUser *domain.User
	err          error
}

func (m *mockUserCreatedHandler) OnUserCreated(_ context.Context, user *domain.User) error {
	m.called = true
	m.receivedUser = user
	return m.err
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Answer:   "blue",
	}
}

func TestRegister_CreatesCustomer(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	user, err := service.Register(context.Background(), registerInput("test@example.com"))

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NotEqual(t, "blue", user.AnswerHash)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	user, err := service.Register(context.Background(), registerInput("  Test@Example.COM "))

	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
}

func TestRegister_EmailAlreadyExists(t *testing.T) {
	repo := newMockRepository()
	repo.users["existing@example.com"] = &domain.User{ID: "user-0", Email: "existing@example.com"}
	handler := &mockUserCreatedHandler{}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), registerInput("existing@example.com"))

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.False(t, handler.called, "handler should not be called for duplicate email")
}

func TestRegister_CallsUserCreatedHandler(t *testing.T) {
	repo := newMockRepository()
	handler := &mockUserCreatedHandler{}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), registerInput("test@example.com"))

	require.NoError(t, err)
	assert.True(t, handler.called, "handler should be called")
	assert.Equal(t, user.ID, handler.receivedUser.ID)
}

func TestRegister_ContinuesIfHandlerFails(t *testing.T) {
	repo := newMockRepository()
	handler := &mockUserCreatedHandler{err: errors.New("handler error")}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), registerInput("test@example.com"))

	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.True(t, handler.called, "handler should still be called")
}

func TestRegister_CreateUserFails(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("database error")
	handler := &mockUserCreatedHandler{}
	service := NewService(repo, &mockAuthenticator{}, handler)

	user, err := service.Register(context.Background(), registerInput("test@example.com"))

	assert.Nil(t, user)
	assert.Error(t, err)
	assert.False(t, handler.called, "handler should not be called if user creation fails")
}

func TestLogin_Success(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	registered, err := service.Register(context.Background(), registerInput("test@example.com"))
	require.NoError(t, err)

	user, token, err := service.Login(context.Background(), "test@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "token-for-"+registered.ID, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	_, err := service.Register(context.Background(), registerInput("test@example.com"))
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), "test@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	_, _, err := service.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword_Success(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	_, err := service.Register(context.Background(), registerInput("test@example.com"))
	require.NoError(t, err)

	err = service.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       "test@example.com",
		Answer:      "blue",
		NewPassword: "new-password",
	})
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), "test@example.com", "new-password")
	assert.NoError(t, err)

	_, _, err = service.Login(context.Background(), "test@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword_WrongAnswer(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	_, err := service.Register(context.Background(), registerInput("test@example.com"))
	require.NoError(t, err)

	err = service.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       "test@example.com",
		Answer:      "red",
		NewPassword: "new-password",
	})
	assert.ErrorIs(t, err, ErrResetMismatch)
}

func TestResetPassword_UnknownEmail(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	err := service.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       "nobody@example.com",
		Answer:      "blue",
		NewPassword: "new-password",
	})
	assert.ErrorIs(t, err, ErrResetMismatch)
}

func TestUpdateProfile_KeepsEmptyFields(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	registered, err := service.Register(context.Background(), registerInput("test@example.com"))
	require.NoError(t, err)

	updated, err := service.UpdateProfile(context.Background(), registered.ID, UpdateProfileInput{
		Phone: "555-0199",
	})

	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, "Test User", updated.Name)
	assert.Equal(t, "1 Main St", updated.Address)
}

func TestCreateUser_RoleCap(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	input := CreateUserInput{
		Name:     "New Admin",
		Email:    "admin@example.com",
		Password: "password123",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Answer:   "blue",
		Role:     domain.RoleManager,
	}

	_, err := service.CreateUser(context.Background(), domain.RoleAdmin, input)
	assert.ErrorIs(t, err, ErrRoleTooHigh)

	user, err := service.CreateUser(context.Background(), domain.RoleSuperadmin, input)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, user.Role)
}

func TestCreateUser_DefaultsToCustomer(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	user, err := service.CreateUser(context.Background(), domain.RoleAdmin, CreateUserInput{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "password123",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Answer:   "blue",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)
}

func TestUpdateUser_ChangesRole(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	registered, err := service.Register(context.Background(), registerInput("test@example.com"))
	require.NoError(t, err)

	newRole := domain.RoleAdmin
	updated, err := service.UpdateUser(context.Background(), "caller-id", registered.ID, AdminUpdateInput{
		Role: &newRole,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestUpdateUser_SelfDemoteRejected(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	registered, err := service.Register(context.Background(), registerInput("boss@example.com"))
	require.NoError(t, err)
	registered.Role = domain.RoleSuperadmin

	lower := domain.RoleAdmin
	_, err = service.UpdateUser(context.Background(), registered.ID, registered.ID, AdminUpdateInput{
		Role: &lower,
	})
	assert.ErrorIs(t, err, ErrSelfDemote)
}

func TestUpdateUser_EmailCollision(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	_, err := service.Register(context.Background(), registerInput("first@example.com"))
	require.NoError(t, err)
	second, err := service.Register(context.Background(), registerInput("second@example.com"))
	require.NoError(t, err)

	_, err = service.UpdateUser(context.Background(), "caller-id", second.ID, AdminUpdateInput{
		Email: "first@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestDeleteUser_SelfDeleteRejected(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	err := service.DeleteUser(context.Background(), "user-1", "user-1")
	assert.ErrorIs(t, err, ErrSelfDelete)
	assert.Empty(t, repo.deletedIDs)
}

func TestDeleteUser_RemovesTarget(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{}, nil)

	registered, err := service.Register(context.Background(), registerInput("target@example.com"))
	require.NoError(t, err)

	err = service.DeleteUser(context.Background(), "caller-id", registered.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{registered.ID}, repo.deletedIDs)
}
