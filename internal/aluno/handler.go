package aluno

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

// ListAlunosResponse is the paginated body of GET /alunos
type ListAlunosResponse struct {
	Alunos []AlunoResponse `json:"alunos"`
	Total  int             `json:"total"`
	Skip   int             `json:"skip"`
	Limit  int             `json:"limit"`
}

// Handler handles HTTP requests for student endpoints
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /alunos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlunoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	aluno, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, aluno)
}

// List handles GET /alunos
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Parâmetros de consulta inválidos")
		return
	}

	alunos, total, err := h.service.List(r.Context(), params)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSON(w, http.StatusOK, ListAlunosResponse{
		Alunos: alunos,
		Total:  total,
		Skip:   params.Skip,
		Limit:  params.Limit,
	})
}

// Get handles GET /alunos/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	aluno, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, aluno)
}

// Update handles PUT /alunos/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	var req UpdateAlunoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	aluno, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, aluno)
}

// Delete handles DELETE /alunos/{id}: deactivates an active student,
// permanently removes one already inactive.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Identificador inválido")
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteMessage(w, http.StatusOK, result.Message)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr validator.ValidationErrors

	switch {
	case errors.Is(err, repository.ErrAlunoNaoEncontrado):
		api.WriteError(w, http.StatusNotFound, "Aluno não encontrado")
	case errors.Is(err, repository.ErrTurmaNaoEncontrada):
		api.WriteError(w, http.StatusBadRequest, "Turma não encontrada")
	case errors.Is(err, repository.ErrAlunoEmailJaExiste):
		api.WriteError(w, http.StatusBadRequest, "Email já cadastrado para outro aluno")
	case errors.Is(err, repository.ErrAlunoCPFJaCadastrado):
		api.WriteError(w, http.StatusBadRequest, "CPF já cadastrado para outro aluno")
	case errors.Is(err, ErrCPFInvalido),
		errors.Is(err, ErrNascimentoNoFuturo),
		errors.Is(err, ErrIdadeAcimaDoLimite),
		errors.Is(err, ErrCapacidadeExcedida),
		errors.Is(err, ErrStatusInvalido),
		errors.Is(err, ErrDataNascimentoAusente):
		api.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		api.WriteError(w, http.StatusBadRequest, "Dados inválidos: "+verr.Error())
	default:
		api.WriteError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// listParams parses the pagination and filter query parameters.
func listParams(r *http.Request) (repository.ListAlunoParams, error) {
	params := repository.ListAlunoParams{
		Skip:   0,
		Limit:  100,
		Search: r.URL.Query().Get("search"),
	}

	if v := r.URL.Query().Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return params, errors.New("skip inválido")
		}
		params.Skip = skip
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 1000 {
			return params, errors.New("limit inválido")
		}
		params.Limit = limit
	}
	if v := r.URL.Query().Get("turma_id"); v != "" {
		turmaID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, errors.New("turma_id inválido")
		}
		params.TurmaID = &turmaID
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := repository.StatusAluno(v)
		if !status.Valid() {
			return params, errors.New("status inválido")
		}
		params.Status = &status
	}

	return params, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
