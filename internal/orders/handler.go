package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bissquit/bookery/internal/catalog"
	"github.com/bissquit/bookery/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the orders module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new orders handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterProtectedRoutes registers routes for any authenticated user.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/orders", h.ListOwnOrders)
	r.Get("/checkout/token", h.ClientToken)
	r.Post("/checkout", h.Checkout)
}

// RegisterAdminRoutes registers back-office routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/all-orders", h.ListAllOrders)
	r.Put("/order-status/{orderID}", h.UpdateStatus)
}

// ClientToken handles GET /checkout/token.
func (h *Handler) ClientToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.ClientToken(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]string{"client_token": token})
}

// CheckoutItem is one line of the checkout request body.
type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest represents the checkout request body.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	Nonce string         `json:"nonce" validate:"required"`
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	cart := make([]CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		cart = append(cart, CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.service.Checkout(r.Context(), httputil.GetUserID(r.Context()), cart, req.Nonce)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, order)
}

// ListOwnOrders handles GET /orders.
func (h *Handler) ListOwnOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByBuyer(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// ListAllOrders handles GET /all-orders.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// UpdateStatusRequest represents the status update body.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PUT /order-status/{orderID}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, order)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrEmptyCart),
		errors.Is(err, catalog.ErrProductNotFound):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	default:
		httputil.HandleError(r.Context(), w, err, nil)
	}
}
