package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Turma repository errors
var (
	ErrTurmaNaoEncontrada = errors.New("turma não encontrada")
	ErrTurmaNomeJaExiste  = errors.New("já existe uma turma com este nome")
)

// TurmaRepository defines the interface for class data access
type TurmaRepository interface {
	Create(ctx context.Context, turma *Turma) error
	GetByID(ctx context.Context, id int64) (*Turma, error)
	GetByNome(ctx context.Context, nome string) (*Turma, error)
	ListAtivas(ctx context.Context) ([]TurmaComAlunos, error)
	Update(ctx context.Context, turma *Turma) error
	Desativar(ctx context.Context, id int64) error
	CountAlunosAtivos(ctx context.Context, turmaID int64) (int, error)
}

// turmaRepository implements TurmaRepository using PostgreSQL
type turmaRepository struct {
	pool *pgxpool.Pool
}

// NewTurmaRepository creates a new TurmaRepository instance
func NewTurmaRepository(pool *pgxpool.Pool) TurmaRepository {
	return &turmaRepository{pool: pool}
}

const turmaColumns = `id, nome, descricao, capacidade, ano_letivo, periodo, ativa, data_criacao`

// Create inserts a new class
func (r *turmaRepository) Create(ctx context.Context, turma *Turma) error {
	query := `
		INSERT INTO turmas (nome, descricao, capacidade, ano_letivo, periodo, ativa)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, data_criacao
	`

	err := r.pool.QueryRow(ctx, query,
		turma.Nome,
		turma.Descricao,
		turma.Capacidade,
		turma.AnoLetivo,
		turma.Periodo,
		true,
	).Scan(&turma.ID, &turma.DataCriacao)

	if err != nil {
		if strings.Contains(err.Error(), "turmas_nome_key") {
			return ErrTurmaNomeJaExiste
		}
		return err
	}

	turma.Ativa = true
	return nil
}

// GetByID retrieves a class by its identifier
func (r *turmaRepository) GetByID(ctx context.Context, id int64) (*Turma, error) {
	query := `SELECT ` + turmaColumns + ` FROM turmas WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByNome retrieves a class by its exact name
func (r *turmaRepository) GetByNome(ctx context.Context, nome string) (*Turma, error) {
	query := `SELECT ` + turmaColumns + ` FROM turmas WHERE nome = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, nome))
}

// ListAtivas returns active classes with the number of active students in
// each, ordered by name.
func (r *turmaRepository) ListAtivas(ctx context.Context) ([]TurmaComAlunos, error) {
	query := `
		SELECT t.id, t.nome, t.descricao, t.capacidade, t.ano_letivo, t.periodo, t.ativa, t.data_criacao,
		       COUNT(a.id) FILTER (WHERE a.status = 'ativo') AS total_alunos
		FROM turmas t
		LEFT JOIN alunos a ON a.turma_id = t.id
		WHERE t.ativa = TRUE
		GROUP BY t.id
		ORDER BY t.nome
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turmas []TurmaComAlunos
	for rows.Next() {
		var t TurmaComAlunos
		if err := rows.Scan(&t.ID, &t.Nome, &t.Descricao, &t.Capacidade, &t.AnoLetivo, &t.Periodo, &t.Ativa, &t.DataCriacao, &t.TotalAlunos); err != nil {
			return nil, err
		}
		turmas = append(turmas, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return turmas, nil
}

// Update persists mutable class fields
func (r *turmaRepository) Update(ctx context.Context, turma *Turma) error {
	query := `
		UPDATE turmas
		SET nome = $1, descricao = $2, capacidade = $3, ano_letivo = $4, periodo = $5, ativa = $6
		WHERE id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		turma.Nome,
		turma.Descricao,
		turma.Capacidade,
		turma.AnoLetivo,
		turma.Periodo,
		turma.Ativa,
		turma.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "turmas_nome_key") {
			return ErrTurmaNomeJaExiste
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTurmaNaoEncontrada
	}

	return nil
}

// Desativar soft-deletes a class by clearing its ativa flag
func (r *turmaRepository) Desativar(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE turmas SET ativa = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTurmaNaoEncontrada
	}
	return nil
}

// CountAlunosAtivos counts active students enrolled in a class
func (r *turmaRepository) CountAlunosAtivos(ctx context.Context, turmaID int64) (int, error) {
	query := `SELECT COUNT(*) FROM alunos WHERE turma_id = $1 AND status = 'ativo'`

	var count int
	if err := r.pool.QueryRow(ctx, query, turmaID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *turmaRepository) scanOne(row pgx.Row) (*Turma, error) {
	t := &Turma{}
	err := row.Scan(&t.ID, &t.Nome, &t.Descricao, &t.Capacidade, &t.AnoLetivo, &t.Periodo, &t.Ativa, &t.DataCriacao)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTurmaNaoEncontrada
		}
		return nil, err
	}
	return t, nil
}
