package turma

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

// Handler handles HTTP requests for class endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /turmas
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTurmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	turma, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, turma)
}

// List handles GET /turmas
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	turmas, err := h.service.List(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSON(w, http.StatusOK, turmas)
}

// Get handles GET /turmas/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	turma, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, turma)
}

// Update handles PUT /turmas/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	var req UpdateTurmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	turma, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, turma)
}

// Delete handles DELETE /turmas/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteMessage(w, http.StatusOK, "Turma excluída com sucesso")
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr validator.ValidationErrors
	var comAlunos *ComAlunosAtivosError

	switch {
	case errors.Is(err, repository.ErrTurmaNaoEncontrada):
		api.WriteError(w, http.StatusNotFound, "Turma não encontrada")
	case errors.Is(err, repository.ErrTurmaNomeJaExiste):
		api.WriteError(w, http.StatusBadRequest, "Já existe uma turma com este nome")
	case errors.Is(err, ErrAnoLetivoInvalido):
		api.WriteError(w, http.StatusBadRequest, "Ano letivo deve estar entre 2020 e 2030")
	case errors.As(err, &comAlunos):
		api.WriteError(w, http.StatusBadRequest, comAlunos.Error())
	case errors.As(err, &verr):
		api.WriteError(w, http.StatusBadRequest, "Dados inválidos: "+verr.Error())
	default:
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
