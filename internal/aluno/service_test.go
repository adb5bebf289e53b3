package aluno

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

// Mock implementations for testing

type mockAlunoRepository struct {
	alunos  map[int64]*repository.Aluno
	nextID  int64
	deleted []int64
}

func newMockAlunoRepository() *mockAlunoRepository {
	return &mockAlunoRepository{
		alunos: make(map[int64]*repository.Aluno),
		nextID: 1,
	}
}

func (m *mockAlunoRepository) Create(ctx context.Context, aluno *repository.Aluno) error {
	aluno.ID = m.nextID
	m.nextID++
	aluno.DataCriacao = time.Now().UTC()
	aluno.DataAtualizacao = aluno.DataCriacao
	m.alunos[aluno.ID] = aluno
	return nil
}

func (m *mockAlunoRepository) GetByID(ctx context.Context, id int64) (*repository.Aluno, error) {
	if aluno, ok := m.alunos[id]; ok {
		return aluno, nil
	}
	return nil, repository.ErrAlunoNaoEncontrado
}

func (m *mockAlunoRepository) List(ctx context.Context, params repository.ListAlunoParams) ([]repository.AlunoComTurma, int, error) {
	var result []repository.AlunoComTurma
	for _, a := range m.alunos {
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		if params.TurmaID != nil && (a.TurmaID == nil || *a.TurmaID != *params.TurmaID) {
			continue
		}
		result = append(result, repository.AlunoComTurma{Aluno: *a})
	}
	return result, len(result), nil
}

func (m *mockAlunoRepository) Update(ctx context.Context, aluno *repository.Aluno) error {
	if _, ok := m.alunos[aluno.ID]; !ok {
		return repository.ErrAlunoNaoEncontrado
	}
	aluno.DataAtualizacao = time.Now().UTC()
	m.alunos[aluno.ID] = aluno
	return nil
}

func (m *mockAlunoRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.alunos[id]; !ok {
		return repository.ErrAlunoNaoEncontrado
	}
	delete(m.alunos, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAlunoRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	for _, a := range m.alunos {
		if a.Email != nil && *a.Email == email && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAlunoRepository) CPFExists(ctx context.Context, cpf string, excludeID int64) (bool, error) {
	for _, a := range m.alunos {
		if a.CPF != nil && *a.CPF == cpf && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type mockTurmaRepository struct {
	turmas       map[int64]*repository.Turma
	alunosAtivos map[int64]int
}

func newMockTurmaRepository() *mockTurmaRepository {
	return &mockTurmaRepository{
		turmas:       make(map[int64]*repository.Turma),
		alunosAtivos: make(map[int64]int),
	}
}

func (m *mockTurmaRepository) Create(ctx context.Context, turma *repository.Turma) error {
	m.turmas[turma.ID] = turma
	return nil
}

func (m *mockTurmaRepository) GetByID(ctx context.Context, id int64) (*repository.Turma, error) {
	if turma, ok := m.turmas[id]; ok {
		return turma, nil
	}
	return nil, repository.ErrTurmaNaoEncontrada
}

func (m *mockTurmaRepository) GetByNome(ctx context.Context, nome string) (*repository.Turma, error) {
	return nil, repository.ErrTurmaNaoEncontrada
}

func (m *mockTurmaRepository) ListAtivas(ctx context.Context) ([]repository.TurmaComAlunos, error) {
	return nil, nil
}

func (m *mockTurmaRepository) Update(ctx context.Context, turma *repository.Turma) error {
	return nil
}

func (m *mockTurmaRepository) Desativar(ctx context.Context, id int64) error {
	return nil
}

func (m *mockTurmaRepository) CountAlunosAtivos(ctx context.Context, turmaID int64) (int, error) {
	return m.alunosAtivos[turmaID], nil
}

func newTestService() (*Service, *mockAlunoRepository, *mockTurmaRepository) {
	alunoRepo := newMockAlunoRepository()
	turmaRepo := newMockTurmaRepository()
	return NewService(alunoRepo, turmaRepo, nil), alunoRepo, turmaRepo
}

func strPtr(s string) *string { return &s }

func nascimento(ano, mes, dia int) api.Date {
	return api.NewDate(time.Date(ano, time.Month(mes), dia, 0, 0, 0, 0, time.UTC))
}

func TestCreateNormalizesCPF(t *testing.T) {
	tests := []struct {
		entrada string
		saida   string
	}{
		{"12345678901", "123.456.789-01"},
		{"123.456.789-01", "123.456.789-01"},
		{"123 456 789 01", "123.456.789-01"},
	}

	for i, tt := range tests {
		svc, _, _ := newTestService()
		aluno, err := svc.Create(context.Background(), CreateAlunoRequest{
			Nome:           "Pedro Almeida",
			DataNascimento: nascimento(2018, 3, 12),
			CPF:            strPtr(tt.entrada),
			Email:          strPtr(formatEmail(i)),
		})
		if err != nil {
			t.Fatalf("create failed for cpf %q: %v", tt.entrada, err)
		}
		if aluno.CPF == nil || *aluno.CPF != tt.saida {
			t.Errorf("cpf %q: expected %q, got %v", tt.entrada, tt.saida, aluno.CPF)
		}
	}
}

func formatEmail(i int) string {
	return string(rune('a'+i)) + "@exemplo.com"
}

func TestCreateInvalidCPF(t *testing.T) {
	svc, _, _ := newTestService()

	for _, cpf := range []string{"123", "123456789012", "abcdefghijk"} {
		_, err := svc.Create(context.Background(), CreateAlunoRequest{
			Nome:           "Pedro Almeida",
			DataNascimento: nascimento(2018, 3, 12),
			CPF:            strPtr(cpf),
		})
		if !errors.Is(err, ErrCPFInvalido) {
			t.Errorf("expected ErrCPFInvalido for %q, got %v", cpf, err)
		}
	}
}

func TestCreateDuplicateCPF(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "Pedro Almeida",
		DataNascimento: nascimento(2018, 3, 12),
		CPF:            strPtr("123.456.789-01"),
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// The same digits in a different shape collide after normalization.
	_, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "Julia Costa",
		DataNascimento: nascimento(2017, 7, 25),
		CPF:            strPtr("12345678901"),
	})
	if !errors.Is(err, repository.ErrAlunoCPFJaCadastrado) {
		t.Fatalf("expected ErrAlunoCPFJaCadastrado, got %v", err)
	}
}

func TestCreateBirthDateRules(t *testing.T) {
	svc, _, _ := newTestService()

	futuro := api.NewDate(time.Now().AddDate(1, 0, 0))
	_, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome: "Pedro Almeida", DataNascimento: futuro,
	})
	if !errors.Is(err, ErrNascimentoNoFuturo) {
		t.Errorf("expected ErrNascimentoNoFuturo, got %v", err)
	}

	antigo := api.NewDate(time.Now().AddDate(-101, 0, 0))
	_, err = svc.Create(context.Background(), CreateAlunoRequest{
		Nome: "Pedro Almeida", DataNascimento: antigo,
	})
	if !errors.Is(err, ErrIdadeAcimaDoLimite) {
		t.Errorf("expected ErrIdadeAcimaDoLimite, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateAlunoRequest{
		Nome: "Pedro Almeida",
	})
	if !errors.Is(err, ErrDataNascimentoAusente) {
		t.Errorf("expected ErrDataNascimentoAusente, got %v", err)
	}
}

func TestCreateCapacityCheck(t *testing.T) {
	svc, _, turmaRepo := newTestService()

	turmaRepo.turmas[1] = &repository.Turma{ID: 1, Nome: "1º ANO A", Capacidade: 2, Ativa: true}
	turmaRepo.alunosAtivos[1] = 2

	turmaID := int64(1)
	_, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "Pedro Almeida",
		DataNascimento: nascimento(2018, 3, 12),
		TurmaID:        &turmaID,
	})
	if !errors.Is(err, ErrCapacidadeExcedida) {
		t.Fatalf("expected ErrCapacidadeExcedida, got %v", err)
	}

	// With room left the enrollment goes through.
	turmaRepo.alunosAtivos[1] = 1
	aluno, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "Pedro Almeida",
		DataNascimento: nascimento(2018, 3, 12),
		TurmaID:        &turmaID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if aluno.TurmaNome == nil || *aluno.TurmaNome != "1º ANO A" {
		t.Errorf("expected turma_nome in response, got %v", aluno.TurmaNome)
	}
}

func TestCreateUnknownTurma(t *testing.T) {
	svc, _, _ := newTestService()

	turmaID := int64(42)
	_, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "Pedro Almeida",
		DataNascimento: nascimento(2018, 3, 12),
		TurmaID:        &turmaID,
	})
	if !errors.Is(err, repository.ErrTurmaNaoEncontrada) {
		t.Fatalf("expected ErrTurmaNaoEncontrada, got %v", err)
	}
}

func TestIdadeComputation(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		nascimento time.Time
		esperado   int
	}{
		{time.Date(2018, 3, 12, 0, 0, 0, 0, time.UTC), 8},
		// Birthday later this year: not completed yet.
		{time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC), 7},
		// Birthday today counts as completed.
		{time.Date(2018, 8, 28, 0, 0, 0, 0, time.UTC), 8},
	}

	for _, tt := range tests {
		if got := idade(tt.nascimento, now); got != tt.esperado {
			t.Errorf("idade(%v): expected %d, got %d", tt.nascimento, tt.esperado, got)
		}
	}
}

// The first delete of an active student only deactivates; deleting again
// removes the row for good.
func TestDeleteTwoStep(t *testing.T) {
	svc, alunoRepo, _ := newTestService()

	aluno, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "Pedro Almeida",
		DataNascimento: nascimento(2018, 3, 12),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := svc.Delete(context.Background(), aluno.ID)
	if err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if result.HardDeleted {
		t.Error("first delete of an active student must be a soft delete")
	}

	stored, err := alunoRepo.GetByID(context.Background(), aluno.ID)
	if err != nil {
		t.Fatalf("student should still exist after soft delete: %v", err)
	}
	if stored.Status != repository.StatusInativo {
		t.Errorf("expected status inativo, got %s", stored.Status)
	}

	result, err = svc.Delete(context.Background(), aluno.ID)
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if !result.HardDeleted {
		t.Error("second delete of an inactive student must be permanent")
	}
	if _, err := alunoRepo.GetByID(context.Background(), aluno.ID); !errors.Is(err, repository.ErrAlunoNaoEncontrado) {
		t.Errorf("expected student gone after hard delete, got %v", err)
	}
}

func TestUpdateTitleCasesNome(t *testing.T) {
	svc, _, _ := newTestService()

	aluno, err := svc.Create(context.Background(), CreateAlunoRequest{
		Nome:           "pedro ALMEIDA",
		DataNascimento: nascimento(2018, 3, 12),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if aluno.Nome != "Pedro Almeida" {
		t.Errorf("expected title-cased name on create, got %q", aluno.Nome)
	}

	novo := "julia DA costa"
	updated, err := svc.Update(context.Background(), aluno.ID, UpdateAlunoRequest{Nome: &novo})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Nome != "Julia Da Costa" {
		t.Errorf("expected title-cased name on update, got %q", updated.Nome)
	}
}
