package usuario

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers the staff account routes, restricted to
// directors.
func RegisterRoutes(r chi.Router, handler *Handler, guard, diretorOnly Middleware) {
	r.Route("/users", func(r chi.Router) {
		r.Use(guard)
		r.Use(diretorOnly)

		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
	})
}
