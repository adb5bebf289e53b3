package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

// ListUsuariosResponse is the paginated body of GET /users
type ListUsuariosResponse struct {
	Usuarios []api.UsuarioResponse `json:"usuarios"`
	Total    int                   `json:"total"`
	Skip     int                   `json:"skip"`
	Limit    int                   `json:"limit"`
}

// Handler handles HTTP requests for staff account endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Parâmetros de consulta inválidos")
		return
	}

	usuarios, total, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSON(w, http.StatusOK, ListUsuariosResponse{
		Usuarios: usuarios,
		Total:    total,
		Skip:     skip,
		Limit:    limit,
	})
}

// Get handles GET /users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	usuario, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, usuario)
}

// Update handles PUT /users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	var req UpdateUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	usuario, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, usuario)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr validator.ValidationErrors

	switch {
	case errors.Is(err, repository.ErrUsuarioNaoEncontrado):
		api.WriteError(w, http.StatusNotFound, "Usuário não encontrado")
	case errors.Is(err, repository.ErrEmailJaCadastrado):
		api.WriteError(w, http.StatusBadRequest, "Email já cadastrado no sistema")
	case errors.As(err, &verr):
		api.WriteError(w, http.StatusBadRequest, "Dados inválidos: "+verr.Error())
	default:
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

func pagination(r *http.Request) (skip, limit int, err error) {
	skip, limit = 0, 100

	if v := r.URL.Query().Get("skip"); v != "" {
		skip, err = strconv.Atoi(v)
		if err != nil || skip < 0 {
			return 0, 0, errors.New("skip inválido")
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 1000 {
			return 0, 0, errors.New("limit inválido")
		}
	}
	return skip, limit, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
