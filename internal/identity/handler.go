package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/bissquit/bookery/internal/pkg/httputil"
	"github.com/bissquit/bookery/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers unauthenticated routes. The login
// limiter guards against credential stuffing.
func (h *Handler) RegisterPublicRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.With(loginLimiter).Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
}

// RegisterProtectedRoutes registers routes that require a session.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Put("/profile", h.UpdateProfile)
}

// RegisterAdminRoutes registers routes for admin and above.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/all-users", h.ListUsers)
	r.Post("/users", h.CreateUser)
}

// RegisterSuperadminRoutes registers superadmin-only routes.
func (h *Handler) RegisterSuperadminRoutes(r chi.Router) {
	r.Put("/users/{userID}", h.UpdateUser)
	r.Delete("/users/{userID}", h.DeleteUser)
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the public user fields.
type LoginResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		h.handleServiceError(r, w, err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	httputil.Success(w, http.StatusOK, LoginResponse{User: user, Token: token})
}

// ForgotPasswordRequest represents the password reset request body.
type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Answer      string `json:"answer" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPassword handles POST /forgot-password.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), ResetPasswordInput{
		Email:       req.Email,
		Answer:      req.Answer,
		NewPassword: req.NewPassword,
	}); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]string{"message": "password reset successfully"})
}

// UpdateProfileRequest represents the self-service profile update body.
// Empty fields keep their current value.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// UpdateProfile handles PUT /profile. The email field is accepted for
// client compatibility but self-service email changes are not applied.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), httputil.GetUserID(r.Context()), UpdateProfileInput{
		Name:     req.Name,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// ListUsers handles GET /all-users. Password hashes never serialize.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, users)
}

// CreateUserRequest represents the administrative user creation body.
// Role accepts both the role name and its numeric form.
type CreateUserRequest struct {
	Name     string      `json:"name" validate:"required,min=1,max=255"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Phone    string      `json:"phone" validate:"required"`
	Address  string      `json:"address" validate:"required"`
	Answer   string      `json:"answer" validate:"required"`
	Role     domain.Role `json:"role"`
}

// CreateUser handles POST /users (admin and above).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), httputil.GetRole(r.Context()), CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		Answer:   req.Answer,
		Role:     req.Role,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// UpdateUserRequest represents the administrative user update body.
type UpdateUserRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email" validate:"omitempty,email"`
	Password string       `json:"password" validate:"omitempty,min=6"`
	Phone    string       `json:"phone"`
	Address  string       `json:"address"`
	Role     *domain.Role `json:"role"`
}

// UpdateUser handles PUT /users/{userID} (superadmin).
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.UpdateUser(r.Context(),
		httputil.GetUserID(r.Context()),
		chi.URLParam(r, "userID"),
		AdminUpdateInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
			Address:  req.Address,
			Role:     req.Role,
		})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{userID} (superadmin).
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteUser(r.Context(), httputil.GetUserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmailExists):
		httputil.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httputil.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrResetMismatch):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSelfDelete), errors.Is(err, ErrSelfDemote):
		httputil.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrRoleTooHigh):
		httputil.Error(w, http.StatusForbidden, err.Error())
	default:
		httputil.HandleError(r.Context(), w, err, nil)
	}
}
