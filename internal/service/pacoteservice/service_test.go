package pacoteservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
	"decolei/internal/service/pacoteservice"
)

// MockPacoteRepository é uma implementação mock da interface PacoteRepository
type MockPacoteRepository struct {
	mock.Mock
	// atual é o pacote "travado" entregue ao callback de Update.
	atual domain.Pacote
}

func (m *MockPacoteRepository) Create(ctx context.Context, p domain.Pacote) (domain.Pacote, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Pacote), args.Error(1)
}

func (m *MockPacoteRepository) FindByID(ctx context.Context, id string) (domain.Pacote, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Pacote), args.Error(1)
}

func (m *MockPacoteRepository) List(ctx context.Context, f domain.PacoteFilter) ([]domain.Pacote, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Pacote), args.Error(1)
}

func (m *MockPacoteRepository) Update(ctx context.Context, id string, mutate func(p *domain.Pacote) error, novasImagens []string) (domain.Pacote, error) {
	args := m.Called(ctx, id, novasImagens)
	p := m.atual
	if err := mutate(&p); err != nil {
		return domain.Pacote{}, err
	}
	return p, args.Error(0)
}

func (m *MockPacoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func novoRequest() domain.CriarPacoteRequest {
	inicio := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	return domain.CriarPacoteRequest{
		Titulo:     "Réveillon em Salvador",
		Destino:    "Salvador",
		Valor:      decimal.RequireFromString("3499.90"),
		DataInicio: inicio,
		DataFim:    inicio.AddDate(0, 0, 7),
		Imagens:    []string{"https://cdn.decolei.com/ssa-1.jpg"},
	}
}

// TestCreate_Success_DefaultCapacity testa que a capacidade padrão é aplicada quando omitida.
func TestCreate_Success_DefaultCapacity(t *testing.T) {
	mockRepo := new(MockPacoteRepository)
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())
	admin := domain.Principal{UserID: uuid.NewString(), Role: domain.RoleAdmin}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p domain.Pacote) bool {
		return p.Capacidade == domain.CapacidadePadrao && p.UsuarioID == admin.UserID && len(p.Imagens) == 1
	})).Return(domain.Pacote{ID: "p1", Capacidade: domain.CapacidadePadrao}, nil)

	created, err := svc.Create(context.Background(), admin, novoRequest())

	assert.NoError(t, err)
	assert.Equal(t, "p1", created.ID)
	mockRepo.AssertExpectations(t)
}

// TestCreate_Validation testa as regras de negócio do cadastro.
func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.CriarPacoteRequest)
	}{
		{"sem titulo", func(r *domain.CriarPacoteRequest) { r.Titulo = "" }},
		{"valor zero", func(r *domain.CriarPacoteRequest) { r.Valor = decimal.Zero }},
		{"valor negativo", func(r *domain.CriarPacoteRequest) { r.Valor = decimal.NewFromInt(-10) }},
		{"fim antes do inicio", func(r *domain.CriarPacoteRequest) { r.DataFim = r.DataInicio.AddDate(0, 0, -1) }},
		{"imagem invalida", func(r *domain.CriarPacoteRequest) { r.Imagens = []string{"nao-e-url"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPacoteRepository)
			svc := pacoteservice.NewService(mockRepo, logger.NewNop())

			req := novoRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), domain.Principal{UserID: "a", Role: domain.RoleAdmin}, req)

			assert.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// TestCreate_RepositoryError testa que a falha do repositório mantém o tipo do erro.
func TestCreate_RepositoryError(t *testing.T) {
	mockRepo := new(MockPacoteRepository)
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(domain.Pacote{}, apperror.NewDBError("Falha ao inserir pacote", errors.New("conn refused")))

	_, err := svc.Create(context.Background(), domain.Principal{UserID: "a", Role: domain.RoleAdmin}, novoRequest())

	var internal *apperror.InternalError
	assert.True(t, errors.As(err, &internal))
}

// TestGet_InvalidID testa que IDs malformados não chegam ao repositório.
func TestGet_InvalidID(t *testing.T) {
	mockRepo := new(MockPacoteRepository)
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	_, err := svc.Get(context.Background(), "123")

	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

// TestList_PrecoInvertido testa o filtro com faixa de preço invertida.
func TestList_PrecoInvertido(t *testing.T) {
	mockRepo := new(MockPacoteRepository)
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	precoMin := decimal.NewFromInt(500)
	precoMax := decimal.NewFromInt(100)
	_, err := svc.List(context.Background(), domain.PacoteFilter{PrecoMin: &precoMin, PrecoMax: &precoMax})

	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestList_Success testa que o filtro é repassado ao repositório.
func TestList_Success(t *testing.T) {
	mockRepo := new(MockPacoteRepository)
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	f := domain.PacoteFilter{Destino: "Gramado"}
	mockRepo.On("List", mock.Anything, f).Return([]domain.Pacote{{ID: "p1", Destino: "Gramado"}}, nil)

	pacotes, err := svc.List(context.Background(), f)

	assert.NoError(t, err)
	assert.Len(t, pacotes, 1)
	mockRepo.AssertExpectations(t)
}

// TestUpdate_CapacidadeAbaixoDaOcupacao testa que a capacidade não pode ficar menor que as vagas ocupadas.
func TestUpdate_CapacidadeAbaixoDaOcupacao(t *testing.T) {
	id := uuid.NewString()
	req := novoRequest()
	mockRepo := &MockPacoteRepository{atual: domain.Pacote{
		ID: id, Valor: req.Valor, DataInicio: req.DataInicio, DataFim: req.DataFim,
		Capacidade: 10, VagasOcupadas: 8,
	}}
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("Update", mock.Anything, id, []string(nil)).Return(nil)

	capacidade := 5
	_, err := svc.Update(context.Background(), id, domain.AtualizarPacoteRequest{Capacidade: &capacidade})

	require.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
}

// TestUpdate_Success testa a atualização parcial.
func TestUpdate_Success(t *testing.T) {
	id := uuid.NewString()
	req := novoRequest()
	mockRepo := &MockPacoteRepository{atual: domain.Pacote{
		ID: id, Titulo: "Antigo", Valor: req.Valor, DataInicio: req.DataInicio, DataFim: req.DataFim,
		Capacidade: 10, VagasOcupadas: 8,
	}}
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("Update", mock.Anything, id, []string(nil)).Return(nil)

	titulo := "Novo"
	capacidade := 8
	updated, err := svc.Update(context.Background(), id, domain.AtualizarPacoteRequest{Titulo: &titulo, Capacidade: &capacidade})

	assert.NoError(t, err)
	assert.Equal(t, "Novo", updated.Titulo)
	assert.Equal(t, 8, updated.Capacidade)
	mockRepo.AssertExpectations(t)
}

// TestUpdate_DatasInvertidas testa que a regra de datas vale também na atualização.
func TestUpdate_DatasInvertidas(t *testing.T) {
	id := uuid.NewString()
	req := novoRequest()
	mockRepo := &MockPacoteRepository{atual: domain.Pacote{
		ID: id, Valor: req.Valor, DataInicio: req.DataInicio, DataFim: req.DataFim, Capacidade: 10,
	}}
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())

	mockRepo.On("Update", mock.Anything, id, []string(nil)).Return(nil)

	fim := req.DataInicio.AddDate(0, 0, -2)
	_, err := svc.Update(context.Background(), id, domain.AtualizarPacoteRequest{DataFim: &fim})

	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestDelete_Conflict testa a exclusão de um pacote com reservas.
func TestDelete_Conflict(t *testing.T) {
	mockRepo := new(MockPacoteRepository)
	svc := pacoteservice.NewService(mockRepo, logger.NewNop())
	id := uuid.NewString()

	mockRepo.On("Delete", mock.Anything, id).Return(apperror.NewConflictError("Pacote possui reservas."))

	err := svc.Delete(context.Background(), id)

	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}
