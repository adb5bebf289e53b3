package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/auth"
	appctx "github.com/dmoura/gestao-escolar/internal/context"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

// AccessGuard resolves the caller identity from the bearer token and
// enforces role policy. Per request it walks a single path:
// header present -> token decodes -> subject resolves to an active user ->
// role predicate holds. Any failed step is terminal.
type AccessGuard struct {
	tokenService *auth.TokenService
	usuarioRepo  repository.UsuarioRepository
	logger       *slog.Logger
}

// NewAccessGuard creates a new AccessGuard instance
func NewAccessGuard(tokenService *auth.TokenService, usuarioRepo repository.UsuarioRepository, logger *slog.Logger) *AccessGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessGuard{
		tokenService: tokenService,
		usuarioRepo:  usuarioRepo,
		logger:       logger,
	}
}

// Authenticate validates the bearer token, re-checks that the subject still
// resolves to an active account and attaches it to the request context.
// A token for a deactivated or deleted account is rejected even when it is
// cryptographically valid and unexpired.
func (g *AccessGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}

		claims, err := g.tokenService.Validate(tokenString)
		if err != nil {
			unauthorized(w)
			return
		}

		usuarioID, err := claims.UsuarioID()
		if err != nil {
			unauthorized(w)
			return
		}

		usuario, err := g.usuarioRepo.GetByID(r.Context(), usuarioID)
		if err != nil {
			// Lookup errors degrade to authentication failure: a broken
			// token and an absent one must look the same to the caller.
			if !errors.Is(err, repository.ErrUsuarioNaoEncontrado) {
				g.logger.Error("falha ao resolver usuário do token", "usuario_id", usuarioID, "error", err)
			}
			unauthorized(w)
			return
		}
		if !usuario.Ativo {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(appctx.WithUsuario(r.Context(), usuario)))
	})
}

// RequireCargo returns a middleware that rejects authenticated callers whose
// role is outside the given set. It must run after Authenticate.
func (g *AccessGuard) RequireCargo(cargos ...repository.Cargo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			usuario, ok := appctx.Usuario(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if !usuario.Cargo.In(cargos...) {
				api.WriteError(w, http.StatusForbidden, "Permissões insuficientes para esta operação")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	api.WriteError(w, http.StatusUnauthorized, "Token inválido ou expirado")
}
