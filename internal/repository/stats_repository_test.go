package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create mock database")
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "pgx"), mock
}

func expectCount(mock sqlmock.Sqlmock, pattern string, value int) {
	mock.ExpectQuery(pattern).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(value))
}

func TestDashboardStats(t *testing.T) {
	db, mock := newStatsMock(t)
	repo := NewStatsRepository(db)

	expectCount(mock, `SELECT COUNT\(\*\) FROM alunos`, 120)
	expectCount(mock, `SELECT COUNT\(\*\) FROM alunos WHERE status = 'ativo'`, 95)
	expectCount(mock, `SELECT COUNT\(\*\) FROM turmas`, 8)
	expectCount(mock, `SELECT COUNT\(\*\) FROM turmas WHERE ativa = TRUE`, 6)
	expectCount(mock, `SELECT COUNT\(\*\) FROM usuarios WHERE ativo = TRUE`, 4)

	mock.ExpectQuery(`SELECT t.nome AS turma, COUNT\(a.id\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"turma", "total"}).
			AddRow("1º ANO A", 28).
			AddRow("2º ANO A", 30))

	stats, err := repo.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120, stats.TotalAlunos)
	assert.Equal(t, 95, stats.AlunosAtivos)
	assert.Equal(t, 25, stats.AlunosInativos, "alunos_inativos must be derived from total minus ativos")
	assert.Equal(t, 8, stats.TotalTurmas)
	assert.Equal(t, 6, stats.TurmasAtivas)
	assert.Equal(t, 4, stats.UsuariosAtivos)

	require.Len(t, stats.AlunosPorTurma, 2)
	assert.Equal(t, AlunosPorTurma{Turma: "1º ANO A", Total: 28}, stats.AlunosPorTurma[0])
	assert.Equal(t, AlunosPorTurma{Turma: "2º ANO A", Total: 30}, stats.AlunosPorTurma[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStatsEmptySchool(t *testing.T) {
	db, mock := newStatsMock(t)
	repo := NewStatsRepository(db)

	expectCount(mock, `SELECT COUNT\(\*\) FROM alunos`, 0)
	expectCount(mock, `SELECT COUNT\(\*\) FROM alunos WHERE status = 'ativo'`, 0)
	expectCount(mock, `SELECT COUNT\(\*\) FROM turmas`, 0)
	expectCount(mock, `SELECT COUNT\(\*\) FROM turmas WHERE ativa = TRUE`, 0)
	expectCount(mock, `SELECT COUNT\(\*\) FROM usuarios WHERE ativo = TRUE`, 0)

	mock.ExpectQuery(`SELECT t.nome AS turma`).
		WillReturnRows(sqlmock.NewRows([]string{"turma", "total"}))

	stats, err := repo.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalAlunos)
	assert.Zero(t, stats.AlunosInativos)
	assert.Empty(t, stats.AlunosPorTurma)
	assert.NotNil(t, stats.AlunosPorTurma, "alunos_por_turma must marshal as [] and not null")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStatsQueryError(t *testing.T) {
	db, mock := newStatsMock(t)
	repo := NewStatsRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM alunos`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.DashboardStats(context.Background())
	require.Error(t, err)
}
