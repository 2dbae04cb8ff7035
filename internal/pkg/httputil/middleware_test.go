package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier struct {
	userID string
	err    error
}

func (f *fakeVerifier) VerifyToken(_ context.Context, _ string) (string, error) {
	return f.userID, f.err
}

type fakeUserSource struct {
	users map[string]*domain.User
}

func (f *fakeUserSource) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserMissing
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	var called bool
	mw := AuthMiddleware(&fakeVerifier{}, &fakeUserSource{})
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "handler must not run without a token")
	assert.Contains(t, rec.Body.String(), "error", "rejection must carry a response body")
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	var called bool
	mw := AuthMiddleware(&fakeVerifier{}, &fakeUserSource{})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	var called bool
	mw := AuthMiddleware(&fakeVerifier{err: errors.New("expired")}, &fakeUserSource{})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthMiddleware_DeletedUser(t *testing.T) {
	var called bool
	mw := AuthMiddleware(&fakeVerifier{userID: "u1"}, &fakeUserSource{users: map[string]*domain.User{}})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthMiddleware_ReadsLiveRole(t *testing.T) {
	users := &fakeUserSource{users: map[string]*domain.User{
		"u1": {ID: "u1", Role: domain.RoleCustomer},
	}}
	mw := AuthMiddleware(&fakeVerifier{userID: "u1"}, users)

	var gotRole domain.Role
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer token")

	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, domain.RoleCustomer, gotRole)

	// A role change takes effect on the next request with the same token.
	users.users["u1"].Role = domain.RoleManager
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, domain.RoleManager, gotRole)
}

func TestRequireRole(t *testing.T) {
	var called bool
	gate := RequireRole(domain.RoleAdmin)(okHandler(&called))

	// No role in context: unauthorized.
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	// Customer: forbidden.
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), RoleKey, domain.RoleCustomer))
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	// Manager outranks admin: allowed.
	req = httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), RoleKey, domain.RoleManager))
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
