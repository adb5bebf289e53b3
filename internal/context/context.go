// Package context carries the per-request identity resolved by the access
// guard so handlers can read it without re-validating the token.
package context

import (
	"context"

	"github.com/dmoura/gestao-escolar/internal/repository"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UsuarioKey is the context key for the authenticated user
const UsuarioKey ContextKey = "usuario"

// WithUsuario attaches the authenticated user to the context.
func WithUsuario(ctx context.Context, usuario *repository.Usuario) context.Context {
	return context.WithValue(ctx, UsuarioKey, usuario)
}

// Usuario extracts the authenticated user from the request context.
func Usuario(ctx context.Context) (*repository.Usuario, bool) {
	usuario, ok := ctx.Value(UsuarioKey).(*repository.Usuario)
	return usuario, ok
}
