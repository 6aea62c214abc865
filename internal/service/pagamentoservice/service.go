package pagamentoservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/events"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/validation"
)

// PagamentoRepository define o contrato que o Processador de Pagamentos espera da camada de Persistência.
type PagamentoRepository interface {
	Create(ctx context.Context, np domain.NovoPagamento, check func(domain.Reserva) error) (domain.Pagamento, domain.Reserva, error)
	SettleBoleto(ctx context.Context, pagamentoID string) (domain.Pagamento, domain.Reserva, bool, error)
	FindStatus(ctx context.Context, pagamentoID string) (domain.StatusPagamentoResponse, error)
	UpdateStatus(ctx context.Context, pagamentoID string, novo domain.Status) (domain.Pagamento, error)
}

// Scheduler agenda a compensação adiada de um boleto.
type Scheduler interface {
	ScheduleBoleto(ctx context.Context, job domain.CompensacaoBoleto, delay time.Duration) error
}

// Notifier envia as notificações de pagamento ao cliente.
type Notifier interface {
	PagamentoRecebido(ctx context.Context, c domain.Cobranca, p domain.Pagamento) error
	BoletoCompensado(ctx context.Context, c domain.Cobranca, p domain.Pagamento) error
}

// Config reúne os parâmetros do processador.
type Config struct {
	BoletoDelay   time.Duration
	PublicBaseURL string
}

// Service é o Processador de Pagamentos.
type Service struct {
	repo      PagamentoRepository
	scheduler Scheduler
	notifier  Notifier
	events    events.Publisher
	cfg       Config
	logger    logger.Logger
	now       func() time.Time
}

// NewService cria e retorna uma nova instância do Processador de Pagamentos.
func NewService(repo PagamentoRepository, scheduler Scheduler, notifier Notifier, publisher events.Publisher, cfg Config, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		notifier:  notifier,
		events:    publisher,
		cfg:       cfg,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit processa um pagamento do dono da reserva.
func (s *Service) Submit(ctx context.Context, p domain.Principal, req domain.PagamentoRequest) (domain.PagamentoResponse, error) {
	if err := validation.Struct(req); err != nil {
		return domain.PagamentoResponse{}, err
	}
	if !req.Valor.IsPositive() {
		return domain.PagamentoResponse{}, apperror.NewValidationError("O valor do pagamento deve ser positivo.")
	}
	metodo, ok := domain.ParseMetodo(req.Metodo)
	if !ok {
		return domain.PagamentoResponse{}, apperror.NewValidationError(
			fmt.Sprintf("Forma de pagamento '%s' inválida. Use PIX, BOLETO, CREDITO ou DEBITO.", req.Metodo))
	}
	parcelas := req.Parcelas
	if parcelas == 0 {
		parcelas = 1
	}
	if parcelas > 1 && metodo != domain.MetodoCartaoCredito {
		return domain.PagamentoResponse{}, apperror.NewValidationError("Parcelamento só é permitido no cartão de crédito.")
	}

	decisao := Decidir(metodo, req.NumeroCartao)
	transacaoID := uuid.NewString()

	pag := domain.Pagamento{
		ID:             uuid.NewString(),
		ReservaID:      req.ReservaID,
		Metodo:         metodo,
		Status:         decisao.Status,
		Valor:          req.Valor,
		Parcelas:       parcelas,
		ComprovanteURL: s.comprovanteURL(transacaoID),
		Data:           s.now(),
	}

	check := func(res domain.Reserva) error {
		if res.UsuarioID != p.UserID {
			return apperror.NewForbiddenError("Apenas o dono da reserva pode pagá-la.")
		}
		if res.Status == domain.StatusRecusado {
			return apperror.NewInvalidStateError("Não é possível pagar uma reserva RECUSADA.")
		}
		return nil
	}

	pag, res, err := s.repo.Create(ctx, domain.NovoPagamento{
		Pagamento:      pag,
		UsuarioID:      p.UserID,
		AprovarReserva: decisao.Status == domain.StatusAprovado && metodo != domain.MetodoBoleto,
	}, check)
	if err != nil {
		return domain.PagamentoResponse{}, err
	}

	cobranca := domain.Cobranca{NomeCompleto: req.NomeCompleto, Email: req.Email, ReservaNum: res.Numero}

	if metodo == domain.MetodoBoleto {
		job := domain.CompensacaoBoleto{
			PagamentoID:   pag.ID,
			NomeCompleto:  cobranca.NomeCompleto,
			Email:         cobranca.Email,
			ReservaNumero: cobranca.ReservaNum,
		}
		if err := s.scheduler.ScheduleBoleto(ctx, job, s.cfg.BoletoDelay); err != nil {
			// O pagamento fica PENDENTE e pode ser resolvido em PUT /pagamentos/{id}.
			s.logger.Error("Falha ao agendar compensação do boleto.", err, logger.Fields{"pagamento_id": pag.ID, "reserva_id": pag.ReservaID})
		}
	}

	s.notificar("recebido", pag, func() error { return s.notifier.PagamentoRecebido(ctx, cobranca, pag) })
	if pag.Status == domain.StatusAprovado {
		s.publicarAprovado(ctx, pag)
	}

	return domain.PagamentoResponse{
		PagamentoID:    pag.ID,
		ReservaID:      pag.ReservaID,
		Metodo:         pag.Metodo,
		Status:         pag.Status,
		ComprovanteURL: pag.ComprovanteURL,
		Mensagem:       decisao.Mensagem,
	}, nil
}

// CompensarBoleto é executado pelo worker quando o prazo do boleto vence.
func (s *Service) CompensarBoleto(ctx context.Context, job domain.CompensacaoBoleto) error {
	pag, _, settled, err := s.repo.SettleBoleto(ctx, job.PagamentoID)
	if err != nil {
		return err
	}
	if !settled {
		return nil
	}

	cobranca := domain.Cobranca{NomeCompleto: job.NomeCompleto, Email: job.Email, ReservaNum: job.ReservaNumero}
	s.notificar("compensado", pag, func() error { return s.notifier.BoletoCompensado(ctx, cobranca, pag) })
	s.publicarAprovado(ctx, pag)
	return nil
}

// Status consulta o pagamento e o espelho na reserva.
func (s *Service) Status(ctx context.Context, id string) (domain.StatusPagamentoResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.StatusPagamentoResponse{}, apperror.NewValidationError("ID de pagamento inválido.")
	}
	return s.repo.FindStatus(ctx, id)
}

// AtualizarStatus é a alteração manual feita pelo ADMIN.
func (s *Service) AtualizarStatus(ctx context.Context, p domain.Principal, id string, req domain.AtualizarStatusPagamentoRequest) (domain.Pagamento, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Pagamento{}, apperror.NewValidationError("ID de pagamento inválido.")
	}
	if err := validation.Struct(req); err != nil {
		return domain.Pagamento{}, err
	}
	novo, ok := domain.ParseStatus(req.Status)
	if !ok {
		return domain.Pagamento{}, apperror.NewValidationError(
			fmt.Sprintf("Status '%s' inválido. Use PENDENTE, APROVADO ou RECUSADO.", req.Status))
	}

	pag, err := s.repo.UpdateStatus(ctx, id, novo)
	if err != nil {
		return domain.Pagamento{}, err
	}

	s.logger.Info("Pagamento atualizado pelo ADMIN.", logger.Fields{"pagamento_id": id, "user_id": p.UserID, "status": novo})
	if novo == domain.StatusAprovado {
		s.publicarAprovado(ctx, pag)
	}
	return pag, nil
}

func (s *Service) comprovanteURL(transacaoID string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/comprovante/" + transacaoID
}

func (s *Service) notificar(tipo string, pag domain.Pagamento, send func() error) {
	if err := send(); err != nil {
		s.logger.Error("Falha ao enviar notificação de pagamento.", err, logger.Fields{
			"tipo":         tipo,
			"pagamento_id": pag.ID,
			"reserva_id":   pag.ReservaID,
		})
	}
}

func (s *Service) publicarAprovado(ctx context.Context, pag domain.Pagamento) {
	ev := events.PagamentoAprovado{
		PagamentoID: pag.ID,
		ReservaID:   pag.ReservaID,
		Metodo:      string(pag.Metodo),
		Valor:       pag.Valor.StringFixed(2),
		Ocorreu:     s.now(),
	}
	if err := s.events.Publish(ctx, events.QueuePagamentoAprovado, ev); err != nil {
		s.logger.Warn("Falha ao publicar evento de domínio.", logger.Fields{"queue": events.QueuePagamentoAprovado, "error": err.Error()})
	}
}
