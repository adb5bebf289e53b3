// Package usuario implements staff account administration, restricted to
// directors.
package usuario

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

var validate = validator.New()

// UpdateUsuarioRequest is the payload for partially updating a staff account
type UpdateUsuarioRequest struct {
	Nome  *string           `json:"nome" validate:"omitempty,min=3,max=100"`
	Email *string           `json:"email" validate:"omitempty,email"`
	Cargo *repository.Cargo `json:"cargo" validate:"omitempty,oneof=diretor coordenador secretario professor"`
	Ativo *bool             `json:"ativo"`
}

// Service holds the staff account business logic
type Service struct {
	usuarioRepo repository.UsuarioRepository
	logger      *slog.Logger
}

// NewService creates a new Service instance
func NewService(usuarioRepo repository.UsuarioRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{usuarioRepo: usuarioRepo, logger: logger}
}

// List returns a page of staff accounts plus the total count.
func (s *Service) List(ctx context.Context, skip, limit int) ([]api.UsuarioResponse, int, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	usuarios, total, err := s.usuarioRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]api.UsuarioResponse, 0, len(usuarios))
	for i := range usuarios {
		result = append(result, api.NewUsuarioResponse(&usuarios[i]))
	}
	return result, total, nil
}

// Get returns a single staff account.
func (s *Service) Get(ctx context.Context, id int64) (*api.UsuarioResponse, error) {
	usuario, err := s.usuarioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := api.NewUsuarioResponse(usuario)
	return &resp, nil
}

// Update applies the set fields of req to an existing account. A changed
// email is re-checked for uniqueness excluding the account itself.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUsuarioRequest) (*api.UsuarioResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	usuario, err := s.usuarioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != usuario.Email {
			exists, err := s.usuarioRepo.EmailExists(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, repository.ErrEmailJaCadastrado
			}
		}
		usuario.Email = email
	}
	if req.Nome != nil {
		usuario.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Cargo != nil {
		usuario.Cargo = *req.Cargo
	}
	if req.Ativo != nil {
		usuario.Ativo = *req.Ativo
	}

	if err := s.usuarioRepo.Update(ctx, usuario); err != nil {
		return nil, err
	}

	s.logger.Info("usuário atualizado", "usuario_id", usuario.ID, "ativo", usuario.Ativo)

	resp := api.NewUsuarioResponse(usuario)
	return &resp, nil
}
