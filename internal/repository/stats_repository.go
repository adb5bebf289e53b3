package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// StatsRepository computes the dashboard aggregates. It is a read-only
// collection of counts, kept on sqlx so the queries stay close to plain SQL.
type StatsRepository interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// statsRepository implements StatsRepository over a sqlx handle
type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository instance
func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

// DashboardStats gathers the dashboard counters in a handful of aggregate
// queries. alunos_inativos is derived instead of queried.
func (r *statsRepository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalAlunos, `SELECT COUNT(*) FROM alunos`},
		{&stats.AlunosAtivos, `SELECT COUNT(*) FROM alunos WHERE status = 'ativo'`},
		{&stats.TotalTurmas, `SELECT COUNT(*) FROM turmas`},
		{&stats.TurmasAtivas, `SELECT COUNT(*) FROM turmas WHERE ativa = TRUE`},
		{&stats.UsuariosAtivos, `SELECT COUNT(*) FROM usuarios WHERE ativo = TRUE`},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, err
		}
	}
	stats.AlunosInativos = stats.TotalAlunos - stats.AlunosAtivos

	porTurma := []AlunosPorTurma{}
	query := `
		SELECT t.nome AS turma, COUNT(a.id) AS total
		FROM turmas t
		LEFT JOIN alunos a ON a.turma_id = t.id
		WHERE t.ativa = TRUE
		GROUP BY t.id, t.nome
		ORDER BY t.nome
	`
	if err := r.db.SelectContext(ctx, &porTurma, query); err != nil {
		return nil, err
	}
	stats.AlunosPorTurma = porTurma

	return stats, nil
}
