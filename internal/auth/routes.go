package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware is an interface for HTTP middleware
type Middleware func(http.Handler) http.Handler

// RegisterRoutes registers the authentication routes.
// Public: /auth/register, /auth/login. Protected: /auth/me.
func RegisterRoutes(r chi.Router, handler *AuthHandler, guard Middleware) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Get("/me", handler.Me)
		})
	})
}
