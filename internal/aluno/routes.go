package aluno

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers the student routes. Everything requires
// authentication; deletion additionally requires the given role policy.
func RegisterRoutes(r chi.Router, handler *Handler, guard, diretorOuCoordenador Middleware) {
	r.Route("/alunos", func(r chi.Router) {
		r.Use(guard)

		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)

		r.Group(func(r chi.Router) {
			r.Use(diretorOuCoordenador)
			r.Delete("/{id}", handler.Delete)
		})
	})
}
