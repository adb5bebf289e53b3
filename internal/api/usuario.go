package api

import (
	"time"

	"github.com/dmoura/gestao-escolar/internal/repository"
)

// UsuarioResponse is the wire representation of a staff account. The password
// hash never leaves the server.
type UsuarioResponse struct {
	ID           int64            `json:"id"`
	Nome         string           `json:"nome"`
	Email        string           `json:"email"`
	Cargo        repository.Cargo `json:"cargo"`
	Ativo        bool             `json:"ativo"`
	DataCriacao  time.Time        `json:"data_criacao"`
	UltimoAcesso *time.Time       `json:"ultimo_acesso"`
}

// NewUsuarioResponse maps a stored account to its wire representation.
func NewUsuarioResponse(u *repository.Usuario) UsuarioResponse {
	return UsuarioResponse{
		ID:           u.ID,
		Nome:         u.Nome,
		Email:        u.Email,
		Cargo:        u.Cargo,
		Ativo:        u.Ativo,
		DataCriacao:  u.DataCriacao,
		UltimoAcesso: u.UltimoAcesso,
	}
}
