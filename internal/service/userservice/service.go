package userservice

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/cache"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/validation"
)

// MensagemRecuperacao é devolvida ao pedido de recuperação, exista ou não a conta.
const MensagemRecuperacao = "Se o email estiver cadastrado, você receberá um link para redefinir a senha."

const resetKeyPrefix = "reset-senha:"

// UserRepository define o contrato que o Serviço de Usuários espera da camada de Persistência.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context, f domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(userID string, role domain.UserRole) (string, error)
}

// Notifier envia o link de redefinição de senha.
type Notifier interface {
	RecuperacaoSenha(ctx context.Context, email, link string) error
}

// Config reúne os parâmetros do fluxo de recuperação de senha.
type Config struct {
	FrontendURL string
	ResetTTL    time.Duration
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	cache    cache.Client
	notifier Notifier
	cfg      Config
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, cacheClient cache.Client, notifier Notifier, cfg Config, log logger.Logger) *UserService {
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		cache:    cacheClient,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
	}
}

// Register registra um novo CLIENTE.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	return s.register(ctx, registration, domain.RoleCliente)
}

// RegisterAdmin cria um novo ADMIN. Só pode ser chamado por outro ADMIN.
func (s *UserService) RegisterAdmin(ctx context.Context, admin domain.Principal, registration domain.UserRegistration) (domain.User, error) {
	user, err := s.register(ctx, registration, domain.RoleAdmin)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("Novo ADMIN cadastrado.", logger.Fields{"user_id": user.ID, "criado_por": admin.UserID})
	return user, nil
}

func (s *UserService) register(ctx context.Context, registration domain.UserRegistration, role domain.UserRole) (domain.User, error) {
	// 1. Normalização e validação do payload
	registration.Email = strings.ToLower(strings.TrimSpace(registration.Email))
	registration.NomeCompleto = strings.TrimSpace(registration.NomeCompleto)
	registration.Documento = strings.TrimSpace(registration.Documento)
	registration.Telefone = strings.TrimSpace(registration.Telefone)
	if err := validation.Struct(registration); err != nil {
		return domain.User{}, err
	}

	// 2. Hashing da Senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Criação do Objeto User
	now := time.Now().UTC()
	newUser := domain.User{
		ID:           uuid.NewString(),
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		NomeCompleto: registration.NomeCompleto,
		Documento:    registration.Documento,
		Telefone:     registration.Telefone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 4. Persistência. Email e documento duplicados voltam como ConflictError.
	return s.UserRepo.Save(ctx, newUser)
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		// NotFound vira Unauthorized para não revelar quais emails existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Tentativa de login com senha incorreta.", logger.Fields{"user_id": user.ID})
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Role)
	if err != nil {
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return domain.LoginResponse{Token: tokenString}, nil
}

// List devolve os usuários, opcionalmente filtrados por nome, email e documento.
func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	f.Nome = strings.TrimSpace(f.Nome)
	f.Email = strings.TrimSpace(f.Email)
	f.Documento = strings.TrimSpace(f.Documento)
	return s.UserRepo.List(ctx, f)
}

// Get busca um usuário pelo ID.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewValidationError("ID de usuário inválido.")
	}
	return s.UserRepo.FindByID(ctx, id)
}

// Me devolve o usuário autenticado.
func (s *UserService) Me(ctx context.Context, p domain.Principal) (domain.User, error) {
	return s.UserRepo.FindByID(ctx, p.UserID)
}

// AdminUpdate altera dados cadastrais e o perfil de um usuário.
func (s *UserService) AdminUpdate(ctx context.Context, admin domain.Principal, id string, upd domain.UserUpdate) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewValidationError("ID de usuário inválido.")
	}
	if err := validation.Struct(upd); err != nil {
		return domain.User{}, err
	}

	var novoPerfil domain.UserRole
	if upd.Perfil != nil {
		perfil, ok := domain.ParseUserRole(*upd.Perfil)
		if !ok {
			return domain.User{}, apperror.NewValidationError(
				fmt.Sprintf("Perfil '%s' inválido. Use CLIENTE, ATENDENTE ou ADMIN.", *upd.Perfil))
		}
		if id == admin.UserID && perfil != domain.RoleAdmin {
			return domain.User{}, apperror.NewForbiddenError("Um ADMIN não pode remover o próprio perfil de ADMIN.")
		}
		novoPerfil = perfil
	}

	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if upd.NomeCompleto != nil {
		user.NomeCompleto = strings.TrimSpace(*upd.NomeCompleto)
	}
	if upd.Telefone != nil {
		user.Telefone = strings.TrimSpace(*upd.Telefone)
	}
	if upd.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*upd.Email))
	}
	if upd.Documento != nil {
		user.Documento = strings.TrimSpace(*upd.Documento)
	}
	if novoPerfil != "" {
		user.Role = novoPerfil
	}

	return s.UserRepo.Update(ctx, user)
}

// RequestPasswordReset gera um token de uso único e envia o link por email.
// A resposta é sempre a mesma; falhas internas são apenas registradas.
func (s *UserService) RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (domain.MessageResponse, error) {
	if err := validation.Struct(req); err != nil {
		return domain.MessageResponse{}, err
	}
	resp := domain.MessageResponse{Mensagem: MensagemRecuperacao}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if !errors.As(err, &notFoundErr) {
			s.logger.Error("Falha ao buscar usuário para recuperação de senha.", err)
		}
		return resp, nil
	}

	resetToken := uuid.NewString()
	if err := s.cache.Set(ctx, resetKeyPrefix+email, resetToken, s.cfg.ResetTTL); err != nil {
		s.logger.Error("Falha ao gravar token de recuperação.", err, logger.Fields{"user_id": user.ID})
		return resp, nil
	}

	link := fmt.Sprintf("%s/redefinir-senha?token=%s&email=%s",
		strings.TrimRight(s.cfg.FrontendURL, "/"), url.QueryEscape(resetToken), url.QueryEscape(email))
	if err := s.notifier.RecuperacaoSenha(ctx, email, link); err != nil {
		s.logger.Error("Falha ao enviar email de recuperação.", err, logger.Fields{"user_id": user.ID})
	}
	return resp, nil
}

// ResetPassword troca a senha se o token conferir. O token é consumido com GetDel,
// então de duas requisições simultâneas com o mesmo token só uma troca a senha.
func (s *UserService) ResetPassword(ctx context.Context, req domain.PasswordReset) (domain.MessageResponse, error) {
	if err := validation.Struct(req); err != nil {
		return domain.MessageResponse{}, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	key := resetKeyPrefix + email
	invalido := apperror.NewValidationError("Token inválido ou expirado.")

	salvo, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Error("Falha ao ler token de recuperação.", err)
		}
		return domain.MessageResponse{}, invalido
	}
	if subtle.ConstantTimeCompare([]byte(salvo), []byte(req.Token)) != 1 {
		return domain.MessageResponse{}, invalido
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.MessageResponse{}, invalido
	}

	consumido, err := s.cache.GetDel(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			return domain.MessageResponse{}, apperror.NewInternalError("Falha ao consumir token de recuperação.", err)
		}
		return domain.MessageResponse{}, invalido
	}
	if subtle.ConstantTimeCompare([]byte(consumido), []byte(req.Token)) != 1 {
		return domain.MessageResponse{}, invalido
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NovaSenha), bcrypt.DefaultCost)
	if err != nil {
		return domain.MessageResponse{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}
	if err := s.UserRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return domain.MessageResponse{}, err
	}

	s.logger.Info("Senha redefinida.", logger.Fields{"user_id": user.ID})
	return domain.MessageResponse{Mensagem: "Senha redefinida com sucesso."}, nil
}
