package reservaservice

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

// ReservaRepository define o contrato que o Serviço de Reservas espera da camada de Persistência.
type ReservaRepository interface {
	Create(ctx context.Context, nr domain.NovaReserva) (domain.Reserva, error)
	ReplaceViajantes(ctx context.Context, id string, viajantes []domain.Viajante, check func(domain.Reserva) error) (domain.Reserva, error)
	UpdateStatus(ctx context.Context, id string, novo domain.Status, check func(atual domain.Status) error) (domain.Reserva, error)
	FindByID(ctx context.Context, id string) (domain.Reserva, error)
	List(ctx context.Context, usuarioID string) ([]domain.Reserva, error)
}

// Service gerencia o ciclo de vida das reservas.
type Service struct {
	repo      ReservaRepository
	events    events.Publisher
	logger    logger.Logger
	now       func() time.Time
	newNumero func() string
}

// NewService cria e retorna uma nova instância do Serviço de Reservas.
func NewService(repo ReservaRepository, publisher events.Publisher, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		events:    publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
		newNumero: NovoNumero,
	}
}

// NovoNumero gera o número legível da reserva: 10 caracteres hexadecimais em maiúsculas.
// Não há nova tentativa em caso de colisão.
func NovoNumero() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Create reserva vagas para o titular e os viajantes informados.
func (s *Service) Create(ctx context.Context, p domain.Principal, req domain.CriarReservaRequest) (domain.Reserva, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Reserva{}, err
	}

	nr := domain.NovaReserva{
		ID:        uuid.NewString(),
		Numero:    s.newNumero(),
		UsuarioID: p.UserID,
		PacoteID:  req.PacoteViagemID,
		Viajantes: normalizar(req.Viajantes),
		Data:      s.now(),
	}

	res, err := s.repo.Create(ctx, nr)
	if err != nil {
		return domain.Reserva{}, err
	}

	s.logger.Info("Reserva criada.", logger.Fields{"reserva_id": res.ID, "user_id": p.UserID, "numero": res.Numero})
	s.publish(ctx, events.QueueReservaCriada, events.ReservaCriada{
		ReservaID: res.ID,
		Numero:    res.Numero,
		UsuarioID: res.UsuarioID,
		PacoteID:  res.PacoteID,
		Vagas:     res.Vagas(),
		Ocorreu:   res.Data,
	})
	return res, nil
}

// UpdateViajantes substitui a lista de viajantes de uma reserva pendente.
func (s *Service) UpdateViajantes(ctx context.Context, p domain.Principal, id string, req domain.AtualizarViajantesRequest) (domain.Reserva, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Reserva{}, apperror.NewValidationError("ID de reserva inválido.")
	}
	if err := validation.Struct(req); err != nil {
		return domain.Reserva{}, err
	}

	check := func(res domain.Reserva) error {
		if res.UsuarioID != p.UserID && p.Role != domain.RoleAdmin {
			return apperror.NewForbiddenError("Apenas o dono da reserva ou um ADMIN pode alterar os viajantes.")
		}
		if res.Status != domain.StatusPendente {
			return apperror.NewInvalidStateError("Os viajantes só podem ser alterados enquanto a reserva está PENDENTE.")
		}
		return nil
	}

	res, err := s.repo.ReplaceViajantes(ctx, id, normalizar(req.Viajantes), check)
	if err != nil {
		return domain.Reserva{}, err
	}
	return res, nil
}

// UpdateStatus é a mudança manual de status feita por ATENDENTE ou ADMIN.
func (s *Service) UpdateStatus(ctx context.Context, p domain.Principal, id string, req domain.AtualizarStatusRequest) (domain.Reserva, error) {
	if !p.IsStaff() {
		return domain.Reserva{}, apperror.NewForbiddenError("Apenas ATENDENTE ou ADMIN podem alterar o status da reserva.")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.Reserva{}, apperror.NewValidationError("ID de reserva inválido.")
	}

	novo, ok := domain.ParseStatus(req.Status)
	if !ok {
		return domain.Reserva{}, apperror.NewValidationError(
			fmt.Sprintf("Status '%s' inválido. Use PENDENTE, APROVADO ou RECUSADO.", req.Status))
	}

	check := func(atual domain.Status) error {
		if !atual.CanTransitionTo(novo) {
			return apperror.NewInvalidStateError(fmt.Sprintf("A reserva não pode passar de %s para %s.", atual, novo))
		}
		return nil
	}

	res, err := s.repo.UpdateStatus(ctx, id, novo, check)
	if err != nil {
		return domain.Reserva{}, err
	}

	s.logger.Info("Status da reserva alterado manualmente.", logger.Fields{"reserva_id": id, "user_id": p.UserID, "status": novo})
	return res, nil
}

// Get devolve uma reserva ao dono, ao ATENDENTE ou ao ADMIN.
func (s *Service) Get(ctx context.Context, p domain.Principal, id string) (domain.Reserva, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Reserva{}, apperror.NewValidationError("ID de reserva inválido.")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Reserva{}, err
	}
	if res.UsuarioID != p.UserID && !p.IsStaff() {
		return domain.Reserva{}, apperror.NewForbiddenError("Você não tem acesso a esta reserva.")
	}
	return res, nil
}

// List devolve todas as reservas para ATENDENTE/ADMIN e apenas as próprias para o CLIENTE.
func (s *Service) List(ctx context.Context, p domain.Principal) ([]domain.Reserva, error) {
	if p.IsStaff() {
		return s.repo.List(ctx, "")
	}
	return s.repo.List(ctx, p.UserID)
}

// Minhas devolve as reservas do próprio usuário, qualquer que seja o perfil.
func (s *Service) Minhas(ctx context.Context, p domain.Principal) ([]domain.Reserva, error) {
	return s.repo.List(ctx, p.UserID)
}

func (s *Service) publish(ctx context.Context, queue string, event interface{}) {
	if err := s.events.Publish(ctx, queue, event); err != nil {
		s.logger.Warn("Falha ao publicar evento de domínio.", logger.Fields{"queue": queue, "error": err.Error()})
	}
}

func normalizar(viajantes []domain.Viajante) []domain.Viajante {
	out := make([]domain.Viajante, 0, len(viajantes))
	for _, v := range viajantes {
		out = append(out, domain.Viajante{Nome: strings.TrimSpace(v.Nome), Documento: strings.TrimSpace(v.Documento)})
	}
	return out
}
