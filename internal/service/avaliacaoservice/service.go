package avaliacaoservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/validation"
)

const (
	notaMinima = 1
	notaMaxima = 5
)

// AvaliacaoRepository define o contrato que a Moderação espera da camada de Persistência.
type AvaliacaoRepository interface {
	Create(ctx context.Context, a domain.Avaliacao) (domain.Avaliacao, error)
	ExistsByUsuarioPacote(ctx context.Context, usuarioID, pacoteID string) (bool, error)
	HasReservaElegivel(ctx context.Context, usuarioID, pacoteID string, status []domain.Status) (bool, error)
	FindByID(ctx context.Context, id string) (domain.Avaliacao, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.AvaliacaoFilter) ([]domain.Avaliacao, error)
}

// PacoteFinder é o pedaço do catálogo usado para validar o pacote avaliado.
type PacoteFinder interface {
	FindByID(ctx context.Context, id string) (domain.Pacote, error)
}

// Service implementa a Moderação de Avaliações.
type Service struct {
	repo    AvaliacaoRepository
	pacotes PacoteFinder
	logger  logger.Logger
	now     func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Avaliações.
func NewService(repo AvaliacaoRepository, pacotes PacoteFinder, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		pacotes: pacotes,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit registra a avaliação de um cliente. A avaliação nasce não aprovada.
func (s *Service) Submit(ctx context.Context, p domain.Principal, req domain.AvaliacaoRequest) (domain.Avaliacao, error) {
	if req.Nota < notaMinima || req.Nota > notaMaxima {
		return domain.Avaliacao{}, apperror.NewValidationError(
			fmt.Sprintf("A nota deve estar entre %d e %d.", notaMinima, notaMaxima))
	}
	if err := validation.Struct(req); err != nil {
		return domain.Avaliacao{}, err
	}

	pacote, err := s.pacotes.FindByID(ctx, req.PacoteViagemID)
	if err != nil {
		return domain.Avaliacao{}, err
	}
	if pacote.DataFim.After(s.now()) {
		return domain.Avaliacao{}, apperror.NewInvalidStateError("O pacote só pode ser avaliado depois da data de término da viagem.")
	}

	existe, err := s.repo.ExistsByUsuarioPacote(ctx, p.UserID, pacote.ID)
	if err != nil {
		return domain.Avaliacao{}, err
	}
	if existe {
		return domain.Avaliacao{}, apperror.NewConflictError("Você já avaliou este pacote.")
	}

	elegivel, err := s.repo.HasReservaElegivel(ctx, p.UserID, pacote.ID, domain.StatusElegiveisAvaliacao)
	if err != nil {
		return domain.Avaliacao{}, err
	}
	if !elegivel {
		s.logger.Warn("Avaliação sem reserva elegível.", logger.Fields{"user_id": p.UserID, "pacote_id": pacote.ID})
		return domain.Avaliacao{}, apperror.NewPreconditionFailedError("É necessário ter uma reserva aprovada deste pacote para avaliá-lo.")
	}

	a := domain.Avaliacao{
		ID:         uuid.NewString(),
		UsuarioID:  p.UserID,
		PacoteID:   pacote.ID,
		Nota:       req.Nota,
		Comentario: strings.TrimSpace(req.Comentario),
		Data:       s.now(),
		Aprovada:   false,
	}
	return s.repo.Create(ctx, a)
}

// Moderate aprova ou rejeita (exclui) uma avaliação.
func (s *Service) Moderate(ctx context.Context, admin domain.Principal, id string, req domain.AcaoAvaliacaoRequest) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("ID de avaliação inválido.")
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(req.Acao)) {
	case domain.AcaoAprovar:
		if err := s.repo.Approve(ctx, id); err != nil {
			return err
		}
		s.logger.Info("Avaliação aprovada.", logger.Fields{"avaliacao_id": id, "user_id": admin.UserID})
		return nil
	case domain.AcaoRejeitar:
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("Avaliação rejeitada e excluída.", logger.Fields{"avaliacao_id": id, "user_id": admin.UserID})
		return nil
	default:
		return apperror.NewValidationError(fmt.Sprintf("Ação '%s' inválida. Use 'aprovar' ou 'rejeitar'.", req.Acao))
	}
}

// Get busca uma avaliação pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Avaliacao, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Avaliacao{}, apperror.NewValidationError("ID de avaliação inválido.")
	}
	return s.repo.FindByID(ctx, id)
}

// ListPendentes devolve as avaliações aguardando moderação, opcionalmente por destino.
func (s *Service) ListPendentes(ctx context.Context, destino string) ([]domain.Avaliacao, error) {
	aprovada := false
	return s.repo.List(ctx, domain.AvaliacaoFilter{Aprovada: &aprovada, Destino: strings.TrimSpace(destino)})
}

// ListAprovadas devolve as avaliações já aprovadas, opcionalmente por destino.
func (s *Service) ListAprovadas(ctx context.Context, destino string) ([]domain.Avaliacao, error) {
	aprovada := true
	return s.repo.List(ctx, domain.AvaliacaoFilter{Aprovada: &aprovada, Destino: strings.TrimSpace(destino)})
}

// ListPorPacote é a listagem pública: só avaliações aprovadas.
func (s *Service) ListPorPacote(ctx context.Context, pacoteID string) ([]domain.Avaliacao, error) {
	if _, err := uuid.Parse(pacoteID); err != nil {
		return nil, apperror.NewValidationError("ID de pacote inválido.")
	}
	aprovada := true
	return s.repo.List(ctx, domain.AvaliacaoFilter{Aprovada: &aprovada, PacoteID: pacoteID})
}

// Minhas devolve as avaliações do usuário com o status de exibição.
func (s *Service) Minhas(ctx context.Context, p domain.Principal) ([]domain.MinhaAvaliacao, error) {
	avaliacoes, err := s.repo.List(ctx, domain.AvaliacaoFilter{UsuarioID: p.UserID})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MinhaAvaliacao, 0, len(avaliacoes))
	for _, a := range avaliacoes {
		out = append(out, domain.MinhaAvaliacao{Avaliacao: a, Status: a.StatusExibicao()})
	}
	return out, nil
}
