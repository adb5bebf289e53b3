package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/metrics"
	"github.com/dmoura/gestao-escolar/internal/repository"
)

// Auth service errors
var (
	// ErrCredenciaisInvalidas is returned for unknown email, wrong password
	// and deactivated accounts alike, so callers cannot probe which emails
	// exist.
	ErrCredenciaisInvalidas = errors.New("email ou senha incorretos")
)

var validate = validator.New()

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Nome  string           `json:"nome" validate:"required,min=3,max=100"`
	Email string           `json:"email" validate:"required,email"`
	Senha string           `json:"senha" validate:"required,min=6"`
	Cargo repository.Cargo `json:"cargo" validate:"required,oneof=diretor coordenador secretario professor"`
}

// TokenResponse represents the login response
type TokenResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	User        api.UsuarioResponse `json:"user"`
}

// AuthService authenticates staff users and issues access tokens
type AuthService struct {
	usuarioRepo   repository.UsuarioRepository
	historicoRepo repository.HistoricoLoginRepository
	tokenService  *TokenService
	logger        *slog.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(
	usuarioRepo repository.UsuarioRepository,
	historicoRepo repository.HistoricoLoginRepository,
	tokenService *TokenService,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		usuarioRepo:   usuarioRepo,
		historicoRepo: historicoRepo,
		tokenService:  tokenService,
		logger:        logger,
	}
}

// Authenticate validates email and password against the stored credentials.
// Unknown user, wrong password and inactive account all collapse into
// ErrCredenciaisInvalidas; the distinction is only logged server-side.
func (s *AuthService) Authenticate(ctx context.Context, email, senha string) (*repository.Usuario, error) {
	usuario, err := s.usuarioRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUsuarioNaoEncontrado) {
			s.logger.Debug("login para email desconhecido", "email", email)
			return nil, ErrCredenciaisInvalidas
		}
		// Persistence trouble must not be distinguishable from a bad token
		// or bad credentials on the wire; it is logged and collapsed.
		s.logger.Error("falha ao consultar usuário no login", "error", err)
		return nil, ErrCredenciaisInvalidas
	}

	if !VerifyPassword(senha, usuario.SenhaHash) {
		s.logger.Debug("senha incorreta", "usuario_id", usuario.ID)
		return nil, ErrCredenciaisInvalidas
	}

	if !usuario.Ativo {
		s.logger.Debug("login de usuário inativo recusado", "usuario_id", usuario.ID)
		return nil, ErrCredenciaisInvalidas
	}

	return usuario, nil
}

// Login authenticates the credentials and, on success, issues a token,
// stamps ultimo_acesso and records the attempt. Audit and timestamp writes
// are best-effort: their failure is logged but never withholds the token
// from an already-authenticated caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, ipAddress, userAgent string) (*TokenResponse, error) {
	usuario, err := s.Authenticate(ctx, req.Email, req.Senha)
	if err != nil {
		s.recordAttempt(ctx, repository.UsuarioDesconhecido, ipAddress, userAgent, false)
		return nil, err
	}

	token, _, err := s.tokenService.Generate(usuario.ID)
	if err != nil {
		return nil, err
	}

	if err := s.usuarioRepo.UpdateUltimoAcesso(ctx, usuario.ID); err != nil {
		s.logger.Warn("falha ao atualizar ultimo_acesso", "usuario_id", usuario.ID, "error", err)
	} else {
		// Re-read so the response carries the fresh timestamp.
		if refreshed, err := s.usuarioRepo.GetByID(ctx, usuario.ID); err == nil {
			usuario = refreshed
		}
	}

	s.recordAttempt(ctx, usuario.ID, ipAddress, userAgent, true)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        api.NewUsuarioResponse(usuario),
	}, nil
}

// Register creates a new staff account. The name is normalized to title case
// and the email must be free.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*repository.Usuario, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.usuarioRepo.EmailExists(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrEmailJaCadastrado
	}

	senhaHash, err := HashPassword(req.Senha)
	if err != nil {
		return nil, err
	}

	usuario := &repository.Usuario{
		Nome:      titleCase(req.Nome),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		SenhaHash: senhaHash,
		Cargo:     req.Cargo,
		Ativo:     true,
	}

	if err := s.usuarioRepo.Create(ctx, usuario); err != nil {
		return nil, err
	}

	return usuario, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, usuarioID int64, ipAddress, userAgent string, sucesso bool) {
	metrics.LoginAttemptsTotal.WithLabelValues(strconv.FormatBool(sucesso)).Inc()

	historico := &repository.HistoricoLogin{
		UsuarioID: usuarioID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Sucesso:   sucesso,
	}
	if err := s.historicoRepo.Insert(ctx, historico); err != nil {
		s.logger.Warn("falha ao registrar histórico de login",
			"usuario_id", usuarioID, "sucesso", sucesso, "error", err)
	}
}

// titleCase uppercases the first letter of each word, like the original
// registration flow did.
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
