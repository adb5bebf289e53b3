package turma

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmoura/gestao-escolar/internal/repository"
)

// mockTurmaRepository implements repository.TurmaRepository for testing
type mockTurmaRepository struct {
	turmas       map[int64]*repository.Turma
	nextID       int64
	alunosAtivos map[int64]int
}

func newMockTurmaRepository() *mockTurmaRepository {
	return &mockTurmaRepository{
		turmas:       make(map[int64]*repository.Turma),
		nextID:       1,
		alunosAtivos: make(map[int64]int),
	}
}

func (m *mockTurmaRepository) Create(ctx context.Context, turma *repository.Turma) error {
	for _, t := range m.turmas {
		if t.Nome == turma.Nome {
			return repository.ErrTurmaNomeJaExiste
		}
	}
	turma.ID = m.nextID
	m.nextID++
	turma.Ativa = true
	turma.DataCriacao = time.Now().UTC()
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
	for _, t := range m.turmas {
		if t.Nome == nome {
			return t, nil
		}
	}
	return nil, repository.ErrTurmaNaoEncontrada
}

func (m *mockTurmaRepository) ListAtivas(ctx context.Context) ([]repository.TurmaComAlunos, error) {
	var result []repository.TurmaComAlunos
	for _, t := range m.turmas {
		if t.Ativa {
			result = append(result, repository.TurmaComAlunos{
				Turma:       *t,
				TotalAlunos: m.alunosAtivos[t.ID],
			})
		}
	}
	return result, nil
}

func (m *mockTurmaRepository) Update(ctx context.Context, turma *repository.Turma) error {
	if _, ok := m.turmas[turma.ID]; !ok {
		return repository.ErrTurmaNaoEncontrada
	}
	for _, t := range m.turmas {
		if t.ID != turma.ID && t.Nome == turma.Nome {
			return repository.ErrTurmaNomeJaExiste
		}
	}
	m.turmas[turma.ID] = turma
	return nil
}

func (m *mockTurmaRepository) Desativar(ctx context.Context, id int64) error {
	turma, ok := m.turmas[id]
	if !ok {
		return repository.ErrTurmaNaoEncontrada
	}
	turma.Ativa = false
	return nil
}

func (m *mockTurmaRepository) CountAlunosAtivos(ctx context.Context, turmaID int64) (int, error) {
	return m.alunosAtivos[turmaID], nil
}

func TestCreateUppercasesNome(t *testing.T) {
	repo := newMockTurmaRepository()
	svc := NewService(repo, nil)

	turma, err := svc.Create(context.Background(), CreateTurmaRequest{
		Nome:       "  1º ano a ",
		Capacidade: 30,
		AnoLetivo:  "2026",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if turma.Nome != "1º ANO A" {
		t.Errorf("expected uppercased trimmed name, got %q", turma.Nome)
	}
	if !turma.Ativa {
		t.Error("new class should start active")
	}
}

func TestCreateDuplicateNome(t *testing.T) {
	repo := newMockTurmaRepository()
	svc := NewService(repo, nil)

	if _, err := svc.Create(context.Background(), CreateTurmaRequest{
		Nome: "1º ANO A", Capacidade: 30, AnoLetivo: "2026",
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Same name in different case collides after normalization.
	_, err := svc.Create(context.Background(), CreateTurmaRequest{
		Nome: "1º ano a", Capacidade: 25, AnoLetivo: "2026",
	})
	if !errors.Is(err, repository.ErrTurmaNomeJaExiste) {
		t.Fatalf("expected ErrTurmaNomeJaExiste, got %v", err)
	}
}

func TestCreateAnoLetivoOutOfRange(t *testing.T) {
	svc := NewService(newMockTurmaRepository(), nil)

	for _, ano := range []string{"2019", "2031", "abcd"} {
		_, err := svc.Create(context.Background(), CreateTurmaRequest{
			Nome: "TESTE", Capacidade: 30, AnoLetivo: ano,
		})
		if !errors.Is(err, ErrAnoLetivoInvalido) {
			t.Errorf("expected ErrAnoLetivoInvalido for %q, got %v", ano, err)
		}
	}
}

func TestUpdatePartial(t *testing.T) {
	repo := newMockTurmaRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateTurmaRequest{
		Nome: "2º ANO B", Capacidade: 30, AnoLetivo: "2026",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	capacidade := 25
	updated, err := svc.Update(context.Background(), created.ID, UpdateTurmaRequest{
		Capacidade: &capacidade,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Capacidade != 25 {
		t.Errorf("expected capacidade 25, got %d", updated.Capacidade)
	}
	if updated.Nome != "2º ANO B" {
		t.Errorf("unset fields must be preserved, got nome %q", updated.Nome)
	}
}

func TestDeleteBlockedWithActiveStudents(t *testing.T) {
	repo := newMockTurmaRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateTurmaRequest{
		Nome: "3º ANO C", Capacidade: 30, AnoLetivo: "2026",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.alunosAtivos[created.ID] = 7

	err = svc.Delete(context.Background(), created.ID)
	var comAlunos *ComAlunosAtivosError
	if !errors.As(err, &comAlunos) {
		t.Fatalf("expected ComAlunosAtivosError, got %v", err)
	}
	if comAlunos.Quantidade != 7 {
		t.Errorf("expected count 7 in error, got %d", comAlunos.Quantidade)
	}
	if !strings.Contains(comAlunos.Error(), "7 aluno(s) ativo(s)") {
		t.Errorf("error message missing count: %q", comAlunos.Error())
	}

	// The class stays active after the refused delete.
	if turma, _ := repo.GetByID(context.Background(), created.ID); !turma.Ativa {
		t.Error("class was deactivated despite active students")
	}
}

func TestDeleteDeactivates(t *testing.T) {
	repo := newMockTurmaRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateTurmaRequest{
		Nome: "4º ANO D", Capacidade: 30, AnoLetivo: "2026",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	turma, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("class should still exist after soft delete: %v", err)
	}
	if turma.Ativa {
		t.Error("class should be inactive after delete")
	}
}

func TestDeleteUnknownTurma(t *testing.T) {
	svc := NewService(newMockTurmaRepository(), nil)

	err := svc.Delete(context.Background(), 999)
	if !errors.Is(err, repository.ErrTurmaNaoEncontrada) {
		t.Fatalf("expected ErrTurmaNaoEncontrada, got %v", err)
	}
}
