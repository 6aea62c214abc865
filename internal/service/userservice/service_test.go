package userservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/cache"
	"decolei/internal/pkg/logger"
	"decolei/internal/service/userservice"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, role domain.UserRole) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

// memCache é um cache.Client em memória suficiente para o fluxo de recuperação de senha.
type memCache struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) GetInt(context.Context, string) (int, error) { return 0, cache.ErrCacheMiss }

func (c *memCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.data[key] = value.(string)
	c.ttl[key] = expiration
	return nil
}

func (c *memCache) Incr(context.Context, string) (int64, error) { return 0, nil }

func (c *memCache) Expire(context.Context, string, time.Duration) error { return nil }

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) GetDel(ctx context.Context, key string) (string, error) {
	v, err := c.Get(ctx, key)
	delete(c.data, key)
	return v, err
}

type captureNotifier struct {
	email, link string
	err         error
}

func (n *captureNotifier) RecuperacaoSenha(_ context.Context, email, link string) error {
	n.email, n.link = email, link
	return n.err
}

type fixture struct {
	repo     *MockUserRepository
	tokens   *MockTokenService
	cache    *memCache
	notifier *captureNotifier
	svc      *userservice.UserService
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(MockUserRepository),
		tokens:   new(MockTokenService),
		cache:    newMemCache(),
		notifier: &captureNotifier{},
	}
	f.svc = userservice.NewService(f.repo, f.tokens, f.cache, f.notifier,
		userservice.Config{FrontendURL: "https://decolei.com/"}, logger.NewNop())
	return f
}

func registro() domain.UserRegistration {
	return domain.UserRegistration{
		Email:        "  Joao@Exemplo.com ",
		Password:     "segredo123",
		NomeCompleto: "João Silva",
		Documento:    "123.456.789-00",
	}
}

// TestRegister_Success testa o cadastro de um CLIENTE com senha em hash.
func TestRegister_Success(t *testing.T) {
	f := newFixture()

	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleCliente && u.Email == "joao@exemplo.com" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("segredo123")) == nil
	})).Return(domain.User{ID: "u1", Role: domain.RoleCliente}, nil)

	user, err := f.svc.Register(context.Background(), registro())

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	f.repo.AssertExpectations(t)
}

func TestRegister_Duplicado(t *testing.T) {
	f := newFixture()

	f.repo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("Já existe um usuário com este email."))

	_, err := f.svc.Register(context.Background(), registro())

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestRegister_SenhaCurta(t *testing.T) {
	f := newFixture()
	reg := registro()
	reg.Password = "123"

	_, err := f.svc.Register(context.Background(), reg)

	assert.IsType(t, &apperror.ValidationError{}, err)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegisterAdmin(t *testing.T) {
	f := newFixture()
	admin := domain.Principal{UserID: uuid.NewString(), Role: domain.RoleAdmin}

	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool { return u.Role == domain.RoleAdmin })).
		Return(domain.User{ID: "u2", Role: domain.RoleAdmin}, nil)

	user, err := f.svc.RegisterAdmin(context.Background(), admin, registro())

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{ID: "u1", Email: "joao@exemplo.com", PasswordHash: string(hash), Role: domain.RoleCliente}

	t.Run("sucesso", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", mock.Anything, "joao@exemplo.com").Return(user, nil)
		f.tokens.On("GenerateToken", "u1", domain.RoleCliente).Return("jwt-token", nil)

		resp, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "joao@exemplo.com", Password: "segredo123"})

		require.NoError(t, err)
		assert.Equal(t, "jwt-token", resp.Token)
	})

	t.Run("senha errada", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", mock.Anything, "joao@exemplo.com").Return(user, nil)

		_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "joao@exemplo.com", Password: "outra"})

		assert.IsType(t, &apperror.UnauthorizedError{}, err)
		f.tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
	})

	t.Run("email desconhecido", func(t *testing.T) {
		f := newFixture()
		f.repo.On("FindByEmail", mock.Anything, "x@exemplo.com").Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))

		_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "x@exemplo.com", Password: "segredo123"})

		assert.IsType(t, &apperror.UnauthorizedError{}, err)
	})
}

func TestList_FiltrosNormalizados(t *testing.T) {
	f := newFixture()
	f.repo.On("List", mock.Anything, domain.UserFilter{Nome: "maria", Documento: "123"}).
		Return([]domain.User{{ID: "u1", NomeCompleto: "Maria Souza"}}, nil)

	users, err := f.svc.List(context.Background(), domain.UserFilter{Nome: "  maria ", Email: "   ", Documento: "123"})

	require.NoError(t, err)
	assert.Len(t, users, 1)
	f.repo.AssertExpectations(t)
}

func TestAdminUpdate(t *testing.T) {
	admin := domain.Principal{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	alvoID := uuid.NewString()

	t.Run("promove atendente", func(t *testing.T) {
		f := newFixture()
		perfil := "atendente"
		telefone := " 11999990000 "
		f.repo.On("FindByID", mock.Anything, alvoID).Return(domain.User{ID: alvoID, Role: domain.RoleCliente}, nil)
		f.repo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
			return u.Role == domain.RoleAtendente && u.Telefone == "11999990000"
		})).Return(domain.User{ID: alvoID, Role: domain.RoleAtendente}, nil)

		user, err := f.svc.AdminUpdate(context.Background(), admin, alvoID, domain.UserUpdate{Perfil: &perfil, Telefone: &telefone})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleAtendente, user.Role)
	})

	t.Run("perfil desconhecido", func(t *testing.T) {
		f := newFixture()
		perfil := "GERENTE"

		_, err := f.svc.AdminUpdate(context.Background(), admin, alvoID, domain.UserUpdate{Perfil: &perfil})

		assert.IsType(t, &apperror.ValidationError{}, err)
	})

	t.Run("admin nao rebaixa a si mesmo", func(t *testing.T) {
		f := newFixture()
		perfil := "CLIENTE"

		_, err := f.svc.AdminUpdate(context.Background(), admin, admin.UserID, domain.UserUpdate{Perfil: &perfil})

		assert.IsType(t, &apperror.ForbiddenError{}, err)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

// TestPasswordReset_FluxoCompleto testa pedido, troca e reuso do token.
func TestPasswordReset_FluxoCompleto(t *testing.T) {
	f := newFixture()
	user := domain.User{ID: "u1", Email: "joao@exemplo.com"}
	f.repo.On("FindByEmail", mock.Anything, "joao@exemplo.com").Return(user, nil)
	f.repo.On("UpdatePassword", mock.Anything, "u1", mock.Anything).Return(nil).Once()

	resp, err := f.svc.RequestPasswordReset(context.Background(), domain.PasswordResetRequest{Email: "Joao@Exemplo.com"})
	require.NoError(t, err)
	assert.Equal(t, userservice.MensagemRecuperacao, resp.Mensagem)

	resetToken := f.cache.data["reset-senha:joao@exemplo.com"]
	require.NotEmpty(t, resetToken)
	assert.Equal(t, time.Hour, f.cache.ttl["reset-senha:joao@exemplo.com"])
	assert.Equal(t, "joao@exemplo.com", f.notifier.email)
	assert.True(t, strings.HasPrefix(f.notifier.link, "https://decolei.com/redefinir-senha?token="+resetToken))

	req := domain.PasswordReset{Email: "joao@exemplo.com", Token: resetToken, NovaSenha: "novaSenha1"}
	_, err = f.svc.ResetPassword(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.ResetPassword(context.Background(), req)
	assert.IsType(t, &apperror.ValidationError{}, err)
	f.repo.AssertExpectations(t)
}

func TestPasswordReset_TokenErrado(t *testing.T) {
	f := newFixture()
	f.cache.data["reset-senha:joao@exemplo.com"] = uuid.NewString()

	_, err := f.svc.ResetPassword(context.Background(), domain.PasswordReset{
		Email: "joao@exemplo.com", Token: "chute", NovaSenha: "novaSenha1",
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.NotEmpty(t, f.cache.data["reset-senha:joao@exemplo.com"])
	f.repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

// cacheConcorrente simula outra requisição consumindo o token entre a leitura e o GetDel.
type cacheConcorrente struct {
	*memCache
}

func (c cacheConcorrente) GetDel(_ context.Context, key string) (string, error) {
	delete(c.data, key)
	return "", cache.ErrCacheMiss
}

func TestResetPassword_TokenConsumidoPorOutraRequisicao(t *testing.T) {
	repo := new(MockUserRepository)
	mem := newMemCache()
	resetToken := uuid.NewString()
	mem.data["reset-senha:joao@exemplo.com"] = resetToken
	repo.On("FindByEmail", mock.Anything, "joao@exemplo.com").Return(domain.User{ID: "u1"}, nil)

	svc := userservice.NewService(repo, new(MockTokenService), cacheConcorrente{mem}, &captureNotifier{},
		userservice.Config{}, logger.NewNop())

	_, err := svc.ResetPassword(context.Background(), domain.PasswordReset{
		Email: "joao@exemplo.com", Token: resetToken, NovaSenha: "novaSenha1",
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

// TestRequestPasswordReset_MesmaResposta testa que a resposta não revela se a conta existe.
func TestRequestPasswordReset_MesmaResposta(t *testing.T) {
	f := newFixture()
	f.repo.On("FindByEmail", mock.Anything, "ninguem@exemplo.com").Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))
	f.repo.On("FindByEmail", mock.Anything, "erro@exemplo.com").Return(domain.User{}, apperror.NewDBError("falha", errors.New("timeout")))

	for _, email := range []string{"ninguem@exemplo.com", "erro@exemplo.com"} {
		resp, err := f.svc.RequestPasswordReset(context.Background(), domain.PasswordResetRequest{Email: email})
		require.NoError(t, err)
		assert.Equal(t, userservice.MensagemRecuperacao, resp.Mensagem)
	}
	assert.Empty(t, f.cache.data)
	assert.Empty(t, f.notifier.email)
}

func TestRequestPasswordReset_FalhaNoEmail(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("smtp fora do ar")
	f.repo.On("FindByEmail", mock.Anything, "joao@exemplo.com").Return(domain.User{ID: "u1"}, nil)

	resp, err := f.svc.RequestPasswordReset(context.Background(), domain.PasswordResetRequest{Email: "joao@exemplo.com"})

	require.NoError(t, err)
	assert.Equal(t, userservice.MensagemRecuperacao, resp.Mensagem)
}
