// Package aluno implements student management: enrollment with class
// capacity checks, filtered listing, updates and the two-step delete
// (deactivate first, hard delete once already inactive).
package aluno

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

var validate = validator.New()

// Validation errors
var (
	ErrCPFInvalido           = errors.New("CPF deve ter 11 dígitos")
	ErrNascimentoNoFuturo    = errors.New("data de nascimento não pode ser no futuro")
	ErrIdadeAcimaDoLimite    = errors.New("idade não pode ser superior a 100 anos")
	ErrCapacidadeExcedida    = errors.New("turma já atingiu capacidade máxima")
	ErrStatusInvalido        = errors.New("status inválido")
	ErrDataNascimentoAusente = errors.New("data de nascimento é obrigatória")
)

// CreateAlunoRequest is the payload for enrolling a student
type CreateAlunoRequest struct {
	Nome                string                  `json:"nome" validate:"required,min=3,max=100"`
	CPF                 *string                 `json:"cpf"`
	RG                  *string                 `json:"rg"`
	DataNascimento      api.Date                `json:"data_nascimento"`
	Email               *string                 `json:"email" validate:"omitempty,email"`
	Telefone            *string                 `json:"telefone"`
	Endereco            *string                 `json:"endereco"`
	NomeResponsavel     *string                 `json:"nome_responsavel"`
	TelefoneResponsavel *string                 `json:"telefone_responsavel"`
	Status              *repository.StatusAluno `json:"status"`
	DataMatricula       *api.Date               `json:"data_matricula"`
	Observacoes         *string                 `json:"observacoes"`
	TurmaID             *int64                  `json:"turma_id"`
}

// UpdateAlunoRequest is the payload for partially updating a student
type UpdateAlunoRequest struct {
	Nome                *string                 `json:"nome" validate:"omitempty,min=3,max=100"`
	CPF                 *string                 `json:"cpf"`
	RG                  *string                 `json:"rg"`
	DataNascimento      *api.Date               `json:"data_nascimento"`
	Email               *string                 `json:"email" validate:"omitempty,email"`
	Telefone            *string                 `json:"telefone"`
	Endereco            *string                 `json:"endereco"`
	NomeResponsavel     *string                 `json:"nome_responsavel"`
	TelefoneResponsavel *string                 `json:"telefone_responsavel"`
	Status              *repository.StatusAluno `json:"status"`
	DataMatricula       *api.Date               `json:"data_matricula"`
	Observacoes         *string                 `json:"observacoes"`
	TurmaID             *int64                  `json:"turma_id"`
}

// AlunoResponse is the wire representation of a student
type AlunoResponse struct {
	ID                  int64                  `json:"id"`
	Nome                string                 `json:"nome"`
	CPF                 *string                `json:"cpf"`
	RG                  *string                `json:"rg"`
	DataNascimento      api.Date               `json:"data_nascimento"`
	Email               *string                `json:"email"`
	Telefone            *string                `json:"telefone"`
	Endereco            *string                `json:"endereco"`
	NomeResponsavel     *string                `json:"nome_responsavel"`
	TelefoneResponsavel *string                `json:"telefone_responsavel"`
	Status              repository.StatusAluno `json:"status"`
	DataMatricula       *api.Date              `json:"data_matricula"`
	Observacoes         *string                `json:"observacoes"`
	TurmaID             *int64                 `json:"turma_id"`
	DataCriacao         time.Time              `json:"data_criacao"`
	DataAtualizacao     time.Time              `json:"data_atualizacao"`
	TurmaNome           *string                `json:"turma_nome"`
	Idade               int                    `json:"idade"`
}

// DeleteResult reports which of the two delete behaviors happened.
type DeleteResult struct {
	HardDeleted bool
	Message     string
}

func newAlunoResponse(a *repository.Aluno, turmaNome *string, now time.Time) *AlunoResponse {
	return &AlunoResponse{
		ID:                  a.ID,
		Nome:                a.Nome,
		CPF:                 a.CPF,
		RG:                  a.RG,
		DataNascimento:      api.NewDate(a.DataNascimento),
		Email:               a.Email,
		Telefone:            a.Telefone,
		Endereco:            a.Endereco,
		NomeResponsavel:     a.NomeResponsavel,
		TelefoneResponsavel: a.TelefoneResponsavel,
		Status:              a.Status,
		DataMatricula:       api.DatePtr(a.DataMatricula),
		Observacoes:         a.Observacoes,
		TurmaID:             a.TurmaID,
		DataCriacao:         a.DataCriacao,
		DataAtualizacao:     a.DataAtualizacao,
		TurmaNome:           turmaNome,
		Idade:               idade(a.DataNascimento, now),
	}
}

// Service holds the student business logic
type Service struct {
	alunoRepo repository.AlunoRepository
	turmaRepo repository.TurmaRepository
	logger    *slog.Logger
}

// NewService creates a new Service instance
func NewService(alunoRepo repository.AlunoRepository, turmaRepo repository.TurmaRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{alunoRepo: alunoRepo, turmaRepo: turmaRepo, logger: logger}
}

// Create enrolls a new student. Email and CPF must be unique, the birth date
// must be plausible and the target class must exist with free capacity.
func (s *Service) Create(ctx context.Context, req CreateAlunoRequest) (*AlunoResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.DataNascimento.IsZero() {
		return nil, ErrDataNascimentoAusente
	}
	if err := validateNascimento(req.DataNascimento.Time, time.Now()); err != nil {
		return nil, err
	}

	status := repository.StatusAtivo
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrStatusInvalido
		}
		status = *req.Status
	}

	cpf, err := normalizeCPF(req.CPF)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != "" {
		exists, err := s.alunoRepo.EmailExists(ctx, *req.Email, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrAlunoEmailJaExiste
		}
	}
	if cpf != nil {
		exists, err := s.alunoRepo.CPFExists(ctx, *cpf, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrAlunoCPFJaCadastrado
		}
	}

	if req.TurmaID != nil {
		if err := s.checkCapacidade(ctx, *req.TurmaID); err != nil {
			return nil, err
		}
	}

	aluno := &repository.Aluno{
		Nome:                titleCase(req.Nome),
		CPF:                 cpf,
		RG:                  req.RG,
		DataNascimento:      req.DataNascimento.Time,
		Email:               req.Email,
		Telefone:            req.Telefone,
		Endereco:            req.Endereco,
		NomeResponsavel:     req.NomeResponsavel,
		TelefoneResponsavel: req.TelefoneResponsavel,
		Status:              status,
		Observacoes:         req.Observacoes,
		TurmaID:             req.TurmaID,
	}
	if req.DataMatricula != nil {
		t := req.DataMatricula.Time
		aluno.DataMatricula = &t
	}

	if err := s.alunoRepo.Create(ctx, aluno); err != nil {
		return nil, err
	}

	return s.withTurmaNome(ctx, aluno)
}

// List returns students matching the filters with class names and ages.
func (s *Service) List(ctx context.Context, params repository.ListAlunoParams) ([]AlunoResponse, int, error) {
	if params.Limit <= 0 {
		params.Limit = 100
	}
	if params.Skip < 0 {
		params.Skip = 0
	}

	alunos, total, err := s.alunoRepo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	result := make([]AlunoResponse, 0, len(alunos))
	for i := range alunos {
		result = append(result, *newAlunoResponse(&alunos[i].Aluno, alunos[i].TurmaNome, now))
	}
	return result, total, nil
}

// Get returns a single student.
func (s *Service) Get(ctx context.Context, id int64) (*AlunoResponse, error) {
	aluno, err := s.alunoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withTurmaNome(ctx, aluno)
}

// Update applies the set fields of req to an existing student. Uniqueness is
// re-checked excluding the student itself, and moving into a class re-checks
// its capacity.
func (s *Service) Update(ctx context.Context, id int64, req UpdateAlunoRequest) (*AlunoResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	aluno, err := s.alunoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != "" {
		exists, err := s.alunoRepo.EmailExists(ctx, *req.Email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrAlunoEmailJaExiste
		}
	}
	if req.CPF != nil && *req.CPF != "" {
		cpf, err := normalizeCPF(req.CPF)
		if err != nil {
			return nil, err
		}
		exists, err := s.alunoRepo.CPFExists(ctx, *cpf, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrAlunoCPFJaCadastrado
		}
		aluno.CPF = cpf
	}

	if req.TurmaID != nil && (aluno.TurmaID == nil || *aluno.TurmaID != *req.TurmaID) {
		if err := s.checkCapacidade(ctx, *req.TurmaID); err != nil {
			return nil, err
		}
		aluno.TurmaID = req.TurmaID
	}

	if req.Nome != nil {
		aluno.Nome = titleCase(*req.Nome)
	}
	if req.RG != nil {
		aluno.RG = req.RG
	}
	if req.DataNascimento != nil {
		if err := validateNascimento(req.DataNascimento.Time, time.Now()); err != nil {
			return nil, err
		}
		aluno.DataNascimento = req.DataNascimento.Time
	}
	if req.Email != nil {
		aluno.Email = req.Email
	}
	if req.Telefone != nil {
		aluno.Telefone = req.Telefone
	}
	if req.Endereco != nil {
		aluno.Endereco = req.Endereco
	}
	if req.NomeResponsavel != nil {
		aluno.NomeResponsavel = req.NomeResponsavel
	}
	if req.TelefoneResponsavel != nil {
		aluno.TelefoneResponsavel = req.TelefoneResponsavel
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrStatusInvalido
		}
		aluno.Status = *req.Status
	}
	if req.DataMatricula != nil {
		t := req.DataMatricula.Time
		aluno.DataMatricula = &t
	}
	if req.Observacoes != nil {
		aluno.Observacoes = req.Observacoes
	}

	if err := s.alunoRepo.Update(ctx, aluno); err != nil {
		return nil, err
	}

	return s.withTurmaNome(ctx, aluno)
}

// Delete deactivates an active student; a student that is already inactive
// is removed permanently.
func (s *Service) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	aluno, err := s.alunoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if aluno.Status == repository.StatusInativo {
		if err := s.alunoRepo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return &DeleteResult{HardDeleted: true, Message: "Aluno excluído permanentemente"}, nil
	}

	aluno.Status = repository.StatusInativo
	if err := s.alunoRepo.Update(ctx, aluno); err != nil {
		return nil, err
	}
	return &DeleteResult{HardDeleted: false, Message: "Aluno inativado com sucesso"}, nil
}

// checkCapacidade verifies the class exists and still has room for another
// active student.
func (s *Service) checkCapacidade(ctx context.Context, turmaID int64) error {
	turma, err := s.turmaRepo.GetByID(ctx, turmaID)
	if err != nil {
		return err
	}

	ativos, err := s.turmaRepo.CountAlunosAtivos(ctx, turmaID)
	if err != nil {
		return err
	}
	if ativos >= turma.Capacidade {
		return ErrCapacidadeExcedida
	}
	return nil
}

func (s *Service) withTurmaNome(ctx context.Context, aluno *repository.Aluno) (*AlunoResponse, error) {
	var turmaNome *string
	if aluno.TurmaID != nil {
		turma, err := s.turmaRepo.GetByID(ctx, *aluno.TurmaID)
		if err == nil {
			turmaNome = &turma.Nome
		} else if !errors.Is(err, repository.ErrTurmaNaoEncontrada) {
			return nil, err
		}
	}
	return newAlunoResponse(aluno, turmaNome, time.Now()), nil
}

// idade computes full years between birth date and now.
func idade(nascimento, now time.Time) int {
	years := now.Year() - nascimento.Year()
	if now.Month() < nascimento.Month() ||
		(now.Month() == nascimento.Month() && now.Day() < nascimento.Day()) {
		years--
	}
	return years
}

// validateNascimento rejects birth dates in the future or older than 100
// years.
func validateNascimento(nascimento, now time.Time) error {
	if nascimento.After(now) {
		return ErrNascimentoNoFuturo
	}
	if idade(nascimento, now) > 100 {
		return ErrIdadeAcimaDoLimite
	}
	return nil
}

// normalizeCPF strips punctuation and reformats as 000.000.000-00. A nil or
// empty input stays nil.
func normalizeCPF(cpf *string) (*string, error) {
	if cpf == nil || strings.TrimSpace(*cpf) == "" {
		return nil, nil
	}

	var digits strings.Builder
	for _, r := range *cpf {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 11 {
		return nil, ErrCPFInvalido
	}

	formatted := d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	return &formatted, nil
}

// titleCase uppercases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
