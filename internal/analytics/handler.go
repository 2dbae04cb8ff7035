package analytics

import (
	"net/http"

	"github.com/bissquit/bookery/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the analytics module.
type Handler struct {
	service *Service
}

// NewHandler creates a new analytics handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes registers back-office analytics routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/analytics/summary", h.GetSummary)
}

// GetSummary handles GET /analytics/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, summary)
}
