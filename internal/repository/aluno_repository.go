package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Aluno repository errors
var (
	ErrAlunoNaoEncontrado   = errors.New("aluno não encontrado")
	ErrAlunoEmailJaExiste   = errors.New("email já cadastrado para outro aluno")
	ErrAlunoCPFJaCadastrado = errors.New("CPF já cadastrado para outro aluno")
)

// AlunoRepository defines the interface for student data access
type AlunoRepository interface {
	Create(ctx context.Context, aluno *Aluno) error
	GetByID(ctx context.Context, id int64) (*Aluno, error)
	List(ctx context.Context, params ListAlunoParams) ([]AlunoComTurma, int, error)
	Update(ctx context.Context, aluno *Aluno) error
	Delete(ctx context.Context, id int64) error
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	CPFExists(ctx context.Context, cpf string, excludeID int64) (bool, error)
}

// alunoRepository implements AlunoRepository using PostgreSQL
type alunoRepository struct {
	pool *pgxpool.Pool
}

// NewAlunoRepository creates a new AlunoRepository instance
func NewAlunoRepository(pool *pgxpool.Pool) AlunoRepository {
	return &alunoRepository{pool: pool}
}

const alunoColumns = `id, nome, cpf, rg, data_nascimento, email, telefone, endereco,
	nome_responsavel, telefone_responsavel, status, data_matricula, observacoes,
	turma_id, data_criacao, data_atualizacao`

// Create inserts a new student
func (r *alunoRepository) Create(ctx context.Context, aluno *Aluno) error {
	query := `
		INSERT INTO alunos (nome, cpf, rg, data_nascimento, email, telefone, endereco,
			nome_responsavel, telefone_responsavel, status, data_matricula, observacoes, turma_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, data_criacao, data_atualizacao
	`

	err := r.pool.QueryRow(ctx, query,
		aluno.Nome,
		aluno.CPF,
		aluno.RG,
		aluno.DataNascimento,
		aluno.Email,
		aluno.Telefone,
		aluno.Endereco,
		aluno.NomeResponsavel,
		aluno.TelefoneResponsavel,
		aluno.Status,
		aluno.DataMatricula,
		aluno.Observacoes,
		aluno.TurmaID,
	).Scan(&aluno.ID, &aluno.DataCriacao, &aluno.DataAtualizacao)

	if err != nil {
		return mapAlunoConstraint(err)
	}
	return nil
}

// GetByID retrieves a student by its identifier
func (r *alunoRepository) GetByID(ctx context.Context, id int64) (*Aluno, error) {
	query := `SELECT ` + alunoColumns + ` FROM alunos WHERE id = $1`

	a := &Aluno{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Nome, &a.CPF, &a.RG, &a.DataNascimento, &a.Email, &a.Telefone,
		&a.Endereco, &a.NomeResponsavel, &a.TelefoneResponsavel, &a.Status,
		&a.DataMatricula, &a.Observacoes, &a.TurmaID, &a.DataCriacao, &a.DataAtualizacao,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlunoNaoEncontrado
		}
		return nil, err
	}
	return a, nil
}

// List returns students matching the filters, joined with their class name,
// plus the total count before pagination.
func (r *alunoRepository) List(ctx context.Context, params ListAlunoParams) ([]AlunoComTurma, int, error) {
	where := []string{"TRUE"}
	args := []any{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(a.nome ILIKE $%d OR a.email ILIKE $%d)", len(args), len(args)))
	}
	if params.TurmaID != nil {
		args = append(args, *params.TurmaID)
		where = append(where, fmt.Sprintf("a.turma_id = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM alunos a WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Skip, params.Limit)
	query := fmt.Sprintf(`
		SELECT a.id, a.nome, a.cpf, a.rg, a.data_nascimento, a.email, a.telefone, a.endereco,
		       a.nome_responsavel, a.telefone_responsavel, a.status, a.data_matricula, a.observacoes,
		       a.turma_id, a.data_criacao, a.data_atualizacao, t.nome AS turma_nome
		FROM alunos a
		LEFT JOIN turmas t ON t.id = a.turma_id
		WHERE %s
		ORDER BY a.nome
		OFFSET $%d LIMIT $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var alunos []AlunoComTurma
	for rows.Next() {
		var a AlunoComTurma
		if err := rows.Scan(
			&a.ID, &a.Nome, &a.CPF, &a.RG, &a.DataNascimento, &a.Email, &a.Telefone,
			&a.Endereco, &a.NomeResponsavel, &a.TelefoneResponsavel, &a.Status,
			&a.DataMatricula, &a.Observacoes, &a.TurmaID, &a.DataCriacao, &a.DataAtualizacao,
			&a.TurmaNome,
		); err != nil {
			return nil, 0, err
		}
		alunos = append(alunos, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return alunos, total, nil
}

// Update persists all mutable student fields and refreshes data_atualizacao
func (r *alunoRepository) Update(ctx context.Context, aluno *Aluno) error {
	query := `
		UPDATE alunos
		SET nome = $1, cpf = $2, rg = $3, data_nascimento = $4, email = $5, telefone = $6,
		    endereco = $7, nome_responsavel = $8, telefone_responsavel = $9, status = $10,
		    data_matricula = $11, observacoes = $12, turma_id = $13, data_atualizacao = NOW()
		WHERE id = $14
		RETURNING data_atualizacao
	`

	err := r.pool.QueryRow(ctx, query,
		aluno.Nome, aluno.CPF, aluno.RG, aluno.DataNascimento, aluno.Email,
		aluno.Telefone, aluno.Endereco, aluno.NomeResponsavel, aluno.TelefoneResponsavel,
		aluno.Status, aluno.DataMatricula, aluno.Observacoes, aluno.TurmaID, aluno.ID,
	).Scan(&aluno.DataAtualizacao)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlunoNaoEncontrado
		}
		return mapAlunoConstraint(err)
	}
	return nil
}

// Delete permanently removes a student row. Soft delete is a status update
// handled by the service layer.
func (r *alunoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM alunos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlunoNaoEncontrado
	}
	return nil
}

// EmailExists checks whether another student already uses the email
func (r *alunoRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM alunos WHERE LOWER(email) = LOWER($1) AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CPFExists checks whether another student already uses the CPF
func (r *alunoRepository) CPFExists(ctx context.Context, cpf string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM alunos WHERE cpf = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, cpf, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func mapAlunoConstraint(err error) error {
	switch {
	case strings.Contains(err.Error(), "alunos_email_key"):
		return ErrAlunoEmailJaExiste
	case strings.Contains(err.Error(), "alunos_cpf_key"):
		return ErrAlunoCPFJaCadastrado
	}
	return err
}
