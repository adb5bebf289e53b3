package turma

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers the class routes. Everything requires
// authentication; writes additionally require the given role policies.
func RegisterRoutes(r chi.Router, handler *Handler, guard, diretorOnly, diretorOuCoordenador Middleware) {
	r.Route("/turmas", func(r chi.Router) {
		r.Use(guard)

		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)

		r.Group(func(r chi.Router) {
			r.Use(diretorOuCoordenador)
			r.Post("/", handler.Create)
			r.Put("/{id}", handler.Update)
		})

		r.Group(func(r chi.Router) {
			r.Use(diretorOnly)
			r.Delete("/{id}", handler.Delete)
		})
	})
}
