package pagamentoservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/events"
	"decolei/internal/pkg/logger"
	"decolei/internal/service/pagamentoservice"
)

// MockPagamentoRepository aplica o callback de verificação sobre `reserva`,
// como o repositório real faz com a linha bloqueada.
type MockPagamentoRepository struct {
	mock.Mock
	reserva domain.Reserva
}

func (m *MockPagamentoRepository) Create(ctx context.Context, np domain.NovoPagamento, check func(domain.Reserva) error) (domain.Pagamento, domain.Reserva, error) {
	if err := check(m.reserva); err != nil {
		return domain.Pagamento{}, domain.Reserva{}, err
	}
	args := m.Called(ctx, np)
	res := m.reserva
	if np.AprovarReserva {
		res.Status = domain.StatusAprovado
		res.StatusPagamento = domain.StatusAprovado
	}
	return np.Pagamento, res, args.Error(0)
}

func (m *MockPagamentoRepository) SettleBoleto(ctx context.Context, pagamentoID string) (domain.Pagamento, domain.Reserva, bool, error) {
	args := m.Called(ctx, pagamentoID)
	return args.Get(0).(domain.Pagamento), m.reserva, args.Bool(1), args.Error(2)
}

func (m *MockPagamentoRepository) FindStatus(ctx context.Context, pagamentoID string) (domain.StatusPagamentoResponse, error) {
	args := m.Called(ctx, pagamentoID)
	return args.Get(0).(domain.StatusPagamentoResponse), args.Error(1)
}

func (m *MockPagamentoRepository) UpdateStatus(ctx context.Context, pagamentoID string, novo domain.Status) (domain.Pagamento, error) {
	args := m.Called(ctx, pagamentoID, novo)
	return args.Get(0).(domain.Pagamento), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleBoleto(ctx context.Context, job domain.CompensacaoBoleto, delay time.Duration) error {
	args := m.Called(ctx, job, delay)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PagamentoRecebido(ctx context.Context, c domain.Cobranca, p domain.Pagamento) error {
	args := m.Called(ctx, c, p)
	return args.Error(0)
}

func (m *MockNotifier) BoletoCompensado(ctx context.Context, c domain.Cobranca, p domain.Pagamento) error {
	args := m.Called(ctx, c, p)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	args := m.Called(ctx, queue, event)
	return args.Error(0)
}

var cliente = domain.Principal{UserID: uuid.NewString(), Role: domain.RoleCliente}

type fixture struct {
	repo      *MockPagamentoRepository
	scheduler *MockScheduler
	notifier  *MockNotifier
	publisher *MockPublisher
	svc       *pagamentoservice.Service
}

func newFixture(status domain.Status) *fixture {
	f := &fixture{
		repo: &MockPagamentoRepository{reserva: domain.Reserva{
			ID: uuid.NewString(), Numero: "A1B2C3D4E5", UsuarioID: cliente.UserID,
			Status: status, StatusPagamento: domain.StatusPendente,
		}},
		scheduler: new(MockScheduler),
		notifier:  new(MockNotifier),
		publisher: new(MockPublisher),
	}
	cfg := pagamentoservice.Config{BoletoDelay: 60 * time.Second, PublicBaseURL: "https://api.decolei.com/"}
	f.svc = pagamentoservice.NewService(f.repo, f.scheduler, f.notifier, f.publisher, cfg, logger.NewNop())
	return f
}

func (f *fixture) request(metodo string) domain.PagamentoRequest {
	return domain.PagamentoRequest{
		ReservaID:    f.repo.reserva.ID,
		NomeCompleto: "Maria Souza",
		CPF:          "123.456.789-00",
		Metodo:       metodo,
		Valor:        decimal.RequireFromString("1500.00"),
		Email:        "maria@exemplo.com",
	}
}

func TestDecidir(t *testing.T) {
	tests := []struct {
		metodo domain.MetodoPagamento
		cartao string
		want   domain.Status
	}{
		{domain.MetodoPix, "", domain.StatusAprovado},
		{domain.MetodoBoleto, "", domain.StatusPendente},
		{domain.MetodoCartaoCredito, "4111111111111111", domain.StatusAprovado},
		{domain.MetodoCartaoDebito, "4111 1111 1111", domain.StatusAprovado},
		{domain.MetodoCartaoCredito, "41111111111", domain.StatusRecusado},
		{domain.MetodoCartaoCredito, "string", domain.StatusRecusado},
		{domain.MetodoCartaoDebito, "", domain.StatusRecusado},
		{domain.MetodoPagamento("CHEQUE"), "4111111111111111", domain.StatusRecusado},
	}

	for _, tt := range tests {
		t.Run(string(tt.metodo)+"/"+tt.cartao, func(t *testing.T) {
			assert.Equal(t, tt.want, pagamentoservice.Decidir(tt.metodo, tt.cartao).Status)
		})
	}
}

// TestSubmit_PixAprovaReserva testa que o PIX aprova a reserva na mesma transação.
func TestSubmit_PixAprovaReserva(t *testing.T) {
	f := newFixture(domain.StatusPendente)

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(np domain.NovoPagamento) bool {
		return np.AprovarReserva && np.Pagamento.Status == domain.StatusAprovado && np.Pagamento.Parcelas == 1
	})).Return(nil)
	f.notifier.On("PagamentoRecebido", mock.Anything, mock.MatchedBy(func(c domain.Cobranca) bool {
		return c.ReservaNum == "A1B2C3D4E5" && c.Email == "maria@exemplo.com"
	}), mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, events.QueuePagamentoAprovado, mock.Anything).Return(nil)

	resp, err := f.svc.Submit(context.Background(), cliente, f.request("pix"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAprovado, resp.Status)
	assert.Equal(t, domain.MetodoPix, resp.Metodo)
	assert.True(t, strings.HasPrefix(resp.ComprovanteURL, "https://api.decolei.com/comprovante/"))
	f.scheduler.AssertNotCalled(t, "ScheduleBoleto", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

// TestSubmit_BoletoAgendaCompensacao testa que o boleto fica pendente e agenda o job com o atraso configurado.
func TestSubmit_BoletoAgendaCompensacao(t *testing.T) {
	f := newFixture(domain.StatusPendente)

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(np domain.NovoPagamento) bool {
		return !np.AprovarReserva && np.Pagamento.Status == domain.StatusPendente
	})).Return(nil)
	f.scheduler.On("ScheduleBoleto", mock.Anything, mock.MatchedBy(func(job domain.CompensacaoBoleto) bool {
		return job.PagamentoID != "" && job.ReservaNumero == "A1B2C3D4E5"
	}), 60*time.Second).Return(nil)
	f.notifier.On("PagamentoRecebido", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Submit(context.Background(), cliente, f.request("BOLETO"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendente, resp.Status)
	f.scheduler.AssertExpectations(t)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmit_FalhaNoAgendamento testa que a falha do agendador não desfaz o pagamento.
func TestSubmit_FalhaNoAgendamento(t *testing.T) {
	f := newFixture(domain.StatusPendente)

	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.scheduler.On("ScheduleBoleto", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis indisponível"))
	f.notifier.On("PagamentoRecebido", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Submit(context.Background(), cliente, f.request("BOLETO"))

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPendente, resp.Status)
}

// TestSubmit_CartaoRecusado testa que o cartão curto é recusado sem aprovar a reserva.
func TestSubmit_CartaoRecusado(t *testing.T) {
	f := newFixture(domain.StatusPendente)

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(np domain.NovoPagamento) bool {
		return !np.AprovarReserva && np.Pagamento.Status == domain.StatusRecusado &&
			np.Pagamento.Metodo == domain.MetodoCartaoCredito
	})).Return(nil)
	f.notifier.On("PagamentoRecebido", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := f.request("CREDITO")
	req.NumeroCartao = "1234"
	resp, err := f.svc.Submit(context.Background(), cliente, req)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRecusado, resp.Status)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmit_CartaoParcelado testa o cartão de crédito aprovado em parcelas.
func TestSubmit_CartaoParcelado(t *testing.T) {
	f := newFixture(domain.StatusPendente)

	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(np domain.NovoPagamento) bool {
		return np.AprovarReserva && np.Pagamento.Parcelas == 3
	})).Return(nil)
	f.notifier.On("PagamentoRecebido", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, events.QueuePagamentoAprovado, mock.Anything).Return(nil)

	req := f.request("CARTAO_CREDITO")
	req.NumeroCartao = "5500000000000004"
	req.Parcelas = 3
	resp, err := f.svc.Submit(context.Background(), cliente, req)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAprovado, resp.Status)
}

// TestSubmit_PagamentoEmDobro testa o Conflict quando a reserva já está paga.
func TestSubmit_PagamentoEmDobro(t *testing.T) {
	f := newFixture(domain.StatusAprovado)

	f.repo.On("Create", mock.Anything, mock.Anything).
		Return(apperror.NewConflictError("Esta reserva já possui um pagamento aprovado."))

	_, err := f.svc.Submit(context.Background(), cliente, f.request("PIX"))

	assert.IsType(t, &apperror.ConflictError{}, err)
	f.notifier.AssertNotCalled(t, "PagamentoRecebido", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmit_NotificacaoFalhaNaoPropaga testa que o erro de email só é registrado.
func TestSubmit_NotificacaoFalhaNaoPropaga(t *testing.T) {
	f := newFixture(domain.StatusPendente)

	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("PagamentoRecebido", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp: timeout"))
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("amqp: closed"))

	resp, err := f.svc.Submit(context.Background(), cliente, f.request("PIX"))

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusAprovado, resp.Status)
}

func TestSubmit_Rejeicoes(t *testing.T) {
	outro := domain.Principal{UserID: uuid.NewString(), Role: domain.RoleCliente}

	tests := []struct {
		name    string
		status  domain.Status
		caller  domain.Principal
		mutate  func(r *domain.PagamentoRequest)
		wantErr interface{}
	}{
		{"outro usuario", domain.StatusPendente, outro, func(*domain.PagamentoRequest) {}, &apperror.ForbiddenError{}},
		{"reserva recusada", domain.StatusRecusado, cliente, func(*domain.PagamentoRequest) {}, &apperror.InvalidStateError{}},
		{"metodo invalido", domain.StatusPendente, cliente, func(r *domain.PagamentoRequest) { r.Metodo = "CHEQUE" }, &apperror.ValidationError{}},
		{"valor zero", domain.StatusPendente, cliente, func(r *domain.PagamentoRequest) { r.Valor = decimal.Zero }, &apperror.ValidationError{}},
		{"email invalido", domain.StatusPendente, cliente, func(r *domain.PagamentoRequest) { r.Email = "maria" }, &apperror.ValidationError{}},
		{"pix parcelado", domain.StatusPendente, cliente, func(r *domain.PagamentoRequest) { r.Parcelas = 2 }, &apperror.ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.status)
			req := f.request("PIX")
			tt.mutate(&req)

			_, err := f.svc.Submit(context.Background(), tt.caller, req)

			assert.IsType(t, tt.wantErr, err)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// TestCompensarBoleto_Aprovado testa a compensação com nova notificação.
func TestCompensarBoleto_Aprovado(t *testing.T) {
	f := newFixture(domain.StatusPendente)
	job := domain.CompensacaoBoleto{PagamentoID: uuid.NewString(), NomeCompleto: "Maria", Email: "maria@exemplo.com", ReservaNumero: "A1B2C3D4E5"}
	pag := domain.Pagamento{ID: job.PagamentoID, Metodo: domain.MetodoBoleto, Status: domain.StatusAprovado, Valor: decimal.NewFromInt(100)}

	f.repo.On("SettleBoleto", mock.Anything, job.PagamentoID).Return(pag, true, nil)
	f.notifier.On("BoletoCompensado", mock.Anything, domain.Cobranca{NomeCompleto: "Maria", Email: "maria@exemplo.com", ReservaNum: "A1B2C3D4E5"}, pag).Return(nil)
	f.publisher.On("Publish", mock.Anything, events.QueuePagamentoAprovado, mock.MatchedBy(func(e events.PagamentoAprovado) bool {
		return e.PagamentoID == pag.ID && e.Valor == "100.00" && e.Metodo == "BOLETO"
	})).Return(nil)

	err := f.svc.CompensarBoleto(context.Background(), job)

	assert.NoError(t, err)
	f.notifier.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

// TestCompensarBoleto_JaResolvido testa que um pagamento não pendente não gera notificação.
func TestCompensarBoleto_JaResolvido(t *testing.T) {
	f := newFixture(domain.StatusAprovado)
	id := uuid.NewString()

	f.repo.On("SettleBoleto", mock.Anything, id).Return(domain.Pagamento{ID: id, Status: domain.StatusRecusado}, false, nil)

	err := f.svc.CompensarBoleto(context.Background(), domain.CompensacaoBoleto{PagamentoID: id})

	assert.NoError(t, err)
	f.notifier.AssertNotCalled(t, "BoletoCompensado", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatus(t *testing.T) {
	f := newFixture(domain.StatusPendente)
	id := uuid.NewString()
	want := domain.StatusPagamentoResponse{PagamentoID: id, StatusPagamento: domain.StatusPendente}

	f.repo.On("FindStatus", mock.Anything, id).Return(want, nil)

	got, err := f.svc.Status(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = f.svc.Status(context.Background(), "abc")
	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestAtualizarStatus(t *testing.T) {
	admin := domain.Principal{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	id := uuid.NewString()

	t.Run("aprovado publica evento", func(t *testing.T) {
		f := newFixture(domain.StatusPendente)
		f.repo.On("UpdateStatus", mock.Anything, id, domain.StatusAprovado).
			Return(domain.Pagamento{ID: id, Status: domain.StatusAprovado}, nil)
		f.publisher.On("Publish", mock.Anything, events.QueuePagamentoAprovado, mock.Anything).Return(nil)

		pag, err := f.svc.AtualizarStatus(context.Background(), admin, id, domain.AtualizarStatusPagamentoRequest{Status: "aprovado"})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusAprovado, pag.Status)
		f.publisher.AssertExpectations(t)
	})

	t.Run("status invalido", func(t *testing.T) {
		f := newFixture(domain.StatusPendente)

		_, err := f.svc.AtualizarStatus(context.Background(), admin, id, domain.AtualizarStatusPagamentoRequest{Status: "PAGO"})

		assert.IsType(t, &apperror.ValidationError{}, err)
	})

	t.Run("outro pagamento aprovado", func(t *testing.T) {
		f := newFixture(domain.StatusPendente)
		f.repo.On("UpdateStatus", mock.Anything, id, domain.StatusAprovado).
			Return(domain.Pagamento{}, apperror.NewConflictError("A reserva já possui outro pagamento aprovado."))

		_, err := f.svc.AtualizarStatus(context.Background(), admin, id, domain.AtualizarStatusPagamentoRequest{Status: "APROVADO"})

		assert.IsType(t, &apperror.ConflictError{}, err)
	})
}
