package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsuarioDesconhecido is the sentinel usuario_id recorded for login attempts
// that never resolved to an account.
const UsuarioDesconhecido int64 = 0

// HistoricoLoginRepository is the append-only store of login attempts. Rows
// are never updated or deleted.
type HistoricoLoginRepository interface {
	Insert(ctx context.Context, historico *HistoricoLogin) error
}

// historicoLoginRepository implements HistoricoLoginRepository using PostgreSQL
type historicoLoginRepository struct {
	pool *pgxpool.Pool
}

// NewHistoricoLoginRepository creates a new HistoricoLoginRepository instance
func NewHistoricoLoginRepository(pool *pgxpool.Pool) HistoricoLoginRepository {
	return &historicoLoginRepository{pool: pool}
}

// Insert appends a login attempt record
func (r *historicoLoginRepository) Insert(ctx context.Context, historico *HistoricoLogin) error {
	query := `
		INSERT INTO historico_login (usuario_id, ip_address, user_agent, sucesso)
		VALUES ($1, $2, $3, $4)
		RETURNING id, data_hora
	`

	return r.pool.QueryRow(ctx, query,
		historico.UsuarioID,
		historico.IPAddress,
		historico.UserAgent,
		historico.Sucesso,
	).Scan(&historico.ID, &historico.DataHora)
}
