// Package turma implements class management: creation, listing with
// enrollment counts, updates and soft deletion.
package turma

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmoura/gestao-escolar/internal/repository"
)

var validate = validator.New()

// ErrAnoLetivoInvalido rejects school years outside the supported window.
var ErrAnoLetivoInvalido = errors.New("ano letivo deve estar entre 2020 e 2030")

// ComAlunosAtivosError blocks deletion of a class that still has active
// students enrolled.
type ComAlunosAtivosError struct {
	Quantidade int
}

func (e *ComAlunosAtivosError) Error() string {
	return fmt.Sprintf("Não é possível excluir turma com %d aluno(s) ativo(s)", e.Quantidade)
}

// CreateTurmaRequest is the payload for creating a class
type CreateTurmaRequest struct {
	Nome       string  `json:"nome" validate:"required,min=2,max=100"`
	Descricao  *string `json:"descricao"`
	Capacidade int     `json:"capacidade" validate:"required,gte=1,lte=100"`
	AnoLetivo  string  `json:"ano_letivo" validate:"required,min=4,max=10"`
	Periodo    *string `json:"periodo"`
}

// UpdateTurmaRequest is the payload for partially updating a class
type UpdateTurmaRequest struct {
	Nome       *string `json:"nome" validate:"omitempty,min=2,max=100"`
	Descricao  *string `json:"descricao"`
	Capacidade *int    `json:"capacidade" validate:"omitempty,gte=1,lte=100"`
	AnoLetivo  *string `json:"ano_letivo" validate:"omitempty,min=4,max=10"`
	Periodo    *string `json:"periodo"`
	Ativa      *bool   `json:"ativa"`
}

// TurmaResponse is the wire representation of a class
type TurmaResponse struct {
	ID          int64     `json:"id"`
	Nome        string    `json:"nome"`
	Descricao   *string   `json:"descricao"`
	Capacidade  int       `json:"capacidade"`
	AnoLetivo   string    `json:"ano_letivo"`
	Periodo     *string   `json:"periodo"`
	Ativa       bool      `json:"ativa"`
	DataCriacao time.Time `json:"data_criacao"`
	TotalAlunos int       `json:"total_alunos"`
}

func newTurmaResponse(t *repository.Turma, totalAlunos int) *TurmaResponse {
	return &TurmaResponse{
		ID:          t.ID,
		Nome:        t.Nome,
		Descricao:   t.Descricao,
		Capacidade:  t.Capacidade,
		AnoLetivo:   t.AnoLetivo,
		Periodo:     t.Periodo,
		Ativa:       t.Ativa,
		DataCriacao: t.DataCriacao,
		TotalAlunos: totalAlunos,
	}
}

// Service holds the class business logic
type Service struct {
	turmaRepo repository.TurmaRepository
	logger    *slog.Logger
}

// NewService creates a new Service instance
func NewService(turmaRepo repository.TurmaRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{turmaRepo: turmaRepo, logger: logger}
}

// Create registers a new class. Names are stored uppercased and must be
// unique.
func (s *Service) Create(ctx context.Context, req CreateTurmaRequest) (*TurmaResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := validateAnoLetivo(req.AnoLetivo); err != nil {
		return nil, err
	}

	nome := strings.ToUpper(strings.TrimSpace(req.Nome))
	if _, err := s.turmaRepo.GetByNome(ctx, nome); err == nil {
		return nil, repository.ErrTurmaNomeJaExiste
	} else if !errors.Is(err, repository.ErrTurmaNaoEncontrada) {
		return nil, err
	}

	turma := &repository.Turma{
		Nome:       nome,
		Descricao:  req.Descricao,
		Capacidade: req.Capacidade,
		AnoLetivo:  req.AnoLetivo,
		Periodo:    req.Periodo,
	}

	if err := s.turmaRepo.Create(ctx, turma); err != nil {
		return nil, err
	}

	return newTurmaResponse(turma, 0), nil
}

// List returns the active classes with their active-student counts.
func (s *Service) List(ctx context.Context) ([]TurmaResponse, error) {
	turmas, err := s.turmaRepo.ListAtivas(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]TurmaResponse, 0, len(turmas))
	for i := range turmas {
		result = append(result, *newTurmaResponse(&turmas[i].Turma, turmas[i].TotalAlunos))
	}
	return result, nil
}

// Get returns a single class with its active-student count.
func (s *Service) Get(ctx context.Context, id int64) (*TurmaResponse, error) {
	turma, err := s.turmaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	total, err := s.turmaRepo.CountAlunosAtivos(ctx, id)
	if err != nil {
		return nil, err
	}

	return newTurmaResponse(turma, total), nil
}

// Update applies the set fields of req to an existing class.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTurmaRequest) (*TurmaResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	turma, err := s.turmaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nome != nil {
		turma.Nome = strings.ToUpper(strings.TrimSpace(*req.Nome))
	}
	if req.Descricao != nil {
		turma.Descricao = req.Descricao
	}
	if req.Capacidade != nil {
		turma.Capacidade = *req.Capacidade
	}
	if req.AnoLetivo != nil {
		if err := validateAnoLetivo(*req.AnoLetivo); err != nil {
			return nil, err
		}
		turma.AnoLetivo = *req.AnoLetivo
	}
	if req.Periodo != nil {
		turma.Periodo = req.Periodo
	}
	if req.Ativa != nil {
		turma.Ativa = *req.Ativa
	}

	if err := s.turmaRepo.Update(ctx, turma); err != nil {
		return nil, err
	}

	total, err := s.turmaRepo.CountAlunosAtivos(ctx, id)
	if err != nil {
		return nil, err
	}

	return newTurmaResponse(turma, total), nil
}

// Delete soft-deletes a class. Deletion is refused while active students
// remain enrolled.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.turmaRepo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.turmaRepo.CountAlunosAtivos(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ComAlunosAtivosError{Quantidade: count}
	}

	return s.turmaRepo.Desativar(ctx, id)
}

// validateAnoLetivo accepts a numeric school year between 2020 and 2030.
func validateAnoLetivo(ano string) error {
	year, err := strconv.Atoi(ano)
	if err != nil || year < 2020 || year > 2030 {
		return ErrAnoLetivoInvalido
	}
	return nil
}
