package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers the statistics route, available to any
// authenticated user.
func RegisterRoutes(r chi.Router, handler *Handler, guard Middleware) {
	r.Route("/statistics", func(r chi.Router) {
		r.Use(guard)
		r.Get("/", handler.Dashboard)
	})
}
