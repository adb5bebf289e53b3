package stats

import (
	"net/http"

	"github.com/dmoura/gestao-escolar/internal/api"
)

// Handler handles HTTP requests for the statistics endpoint
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Dashboard handles GET /statistics
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSON(w, http.StatusOK, stats)
}
