package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors
var (
	ErrUsuarioNaoEncontrado = errors.New("usuário não encontrado")
	ErrEmailJaCadastrado    = errors.New("email já cadastrado no sistema")
)

// UsuarioRepository defines the interface for staff account data access
type UsuarioRepository interface {
	Create(ctx context.Context, usuario *Usuario) error
	GetByID(ctx context.Context, id int64) (*Usuario, error)
	GetByEmail(ctx context.Context, email string) (*Usuario, error)
	List(ctx context.Context, skip, limit int) ([]Usuario, int, error)
	Update(ctx context.Context, usuario *Usuario) error
	UpdateUltimoAcesso(ctx context.Context, id int64) error
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
}

// usuarioRepository implements UsuarioRepository using PostgreSQL
type usuarioRepository struct {
	pool *pgxpool.Pool
}

// NewUsuarioRepository creates a new UsuarioRepository instance
func NewUsuarioRepository(pool *pgxpool.Pool) UsuarioRepository {
	return &usuarioRepository{pool: pool}
}

const usuarioColumns = `id, nome, email, senha_hash, cargo, ativo, data_criacao, ultimo_acesso`

// Create inserts a new staff account
func (r *usuarioRepository) Create(ctx context.Context, usuario *Usuario) error {
	query := `
		INSERT INTO usuarios (nome, email, senha_hash, cargo, ativo)
		VALUES ($1, LOWER($2), $3, $4, $5)
		RETURNING id, data_criacao
	`

	err := r.pool.QueryRow(ctx, query,
		usuario.Nome,
		usuario.Email,
		usuario.SenhaHash,
		usuario.Cargo,
		true,
	).Scan(&usuario.ID, &usuario.DataCriacao)

	if err != nil {
		if strings.Contains(err.Error(), "usuarios_email_key") {
			return ErrEmailJaCadastrado
		}
		return err
	}

	usuario.Ativo = true
	usuario.Email = strings.ToLower(usuario.Email)
	return nil
}

// GetByID retrieves a staff account by its identifier
func (r *usuarioRepository) GetByID(ctx context.Context, id int64) (*Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a staff account by email (case-insensitive)
func (r *usuarioRepository) GetByEmail(ctx context.Context, email string) (*Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE LOWER(email) = LOWER($1)`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

// List returns a page of staff accounts plus the total count
func (r *usuarioRepository) List(ctx context.Context, skip, limit int) ([]Usuario, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + usuarioColumns + `
		FROM usuarios
		ORDER BY id
		OFFSET $1 LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		var u Usuario
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Cargo, &u.Ativo, &u.DataCriacao, &u.UltimoAcesso); err != nil {
			return nil, 0, err
		}
		usuarios = append(usuarios, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return usuarios, total, nil
}

// Update persists mutable account fields (nome, email, cargo, ativo)
func (r *usuarioRepository) Update(ctx context.Context, usuario *Usuario) error {
	query := `
		UPDATE usuarios
		SET nome = $1, email = LOWER($2), cargo = $3, ativo = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		usuario.Nome,
		usuario.Email,
		usuario.Cargo,
		usuario.Ativo,
		usuario.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "usuarios_email_key") {
			return ErrEmailJaCadastrado
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUsuarioNaoEncontrado
	}

	return nil
}

// UpdateUltimoAcesso stamps the account's last successful login
func (r *usuarioRepository) UpdateUltimoAcesso(ctx context.Context, id int64) error {
	query := `UPDATE usuarios SET ultimo_acesso = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUsuarioNaoEncontrado
	}

	return nil
}

// EmailExists checks whether an email is already registered to another
// account. Pass excludeID 0 to consider every account.
func (r *usuarioRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM usuarios WHERE LOWER(email) = LOWER($1) AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *usuarioRepository) scanOne(row pgx.Row) (*Usuario, error) {
	u := &Usuario{}
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Cargo, &u.Ativo, &u.DataCriacao, &u.UltimoAcesso)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUsuarioNaoEncontrado
		}
		return nil, err
	}
	return u, nil
}
