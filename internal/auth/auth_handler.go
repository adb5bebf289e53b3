package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmoura/gestao-escolar/internal/api"
	appctx "github.com/dmoura/gestao-escolar/internal/context"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

// AuthHandler handles HTTP requests for authentication endpoints
type AuthHandler struct {
	authService *AuthService
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(authService *AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	response, err := h.authService.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrCredenciaisInvalidas) {
			api.WriteError(w, http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSON(w, http.StatusOK, response)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	usuario, err := h.authService.Register(r.Context(), req)
	if err != nil {
		var verr validator.ValidationErrors
		switch {
		case errors.As(err, &verr):
			api.WriteError(w, http.StatusBadRequest, "Dados inválidos: "+verr.Error())
		case errors.Is(err, repository.ErrEmailJaCadastrado):
			api.WriteError(w, http.StatusBadRequest, "Email já cadastrado no sistema")
		default:
			api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
		}
		return
	}

	api.WriteMessage(w, http.StatusOK, fmt.Sprintf("Usuário %s criado com sucesso!", usuario.Nome))
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	usuario, ok := appctx.Usuario(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "Token inválido ou expirado")
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewUsuarioResponse(usuario))
}

// clientIP extracts the caller address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
