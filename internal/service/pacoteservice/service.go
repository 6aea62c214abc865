package pacoteservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/validation"
)

// PacoteRepository define o contrato que este Serviço espera da camada de Persistência.
type PacoteRepository interface {
	Create(ctx context.Context, p domain.Pacote) (domain.Pacote, error)
	FindByID(ctx context.Context, id string) (domain.Pacote, error)
	List(ctx context.Context, f domain.PacoteFilter) ([]domain.Pacote, error)
	Update(ctx context.Context, id string, mutate func(p *domain.Pacote) error, novasImagens []string) (domain.Pacote, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa o catálogo de pacotes.
type Service struct {
	repo   PacoteRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Pacotes.
func NewService(repo PacoteRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func validarRegras(p domain.Pacote) error {
	if !p.Valor.IsPositive() {
		return apperror.NewValidationError("O valor do pacote deve ser positivo.")
	}
	if p.DataFim.Before(p.DataInicio) {
		return apperror.NewValidationError("A data de fim não pode ser anterior à data de início.")
	}
	return nil
}

// Create cadastra um pacote em nome do admin autenticado.
func (s *Service) Create(ctx context.Context, admin domain.Principal, req domain.CriarPacoteRequest) (domain.Pacote, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Pacote{}, err
	}

	now := time.Now().UTC()
	p := domain.Pacote{
		ID:         uuid.NewString(),
		Titulo:     req.Titulo,
		Descricao:  req.Descricao,
		Destino:    req.Destino,
		Valor:      req.Valor,
		DataInicio: req.DataInicio,
		DataFim:    req.DataFim,
		Capacidade: req.Capacidade,
		UsuarioID:  admin.UserID,
		VideoURL:   req.VideoURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.Capacidade == 0 {
		p.Capacidade = domain.CapacidadePadrao
	}
	for _, u := range req.Imagens {
		p.Imagens = append(p.Imagens, domain.Imagem{URL: u})
	}

	if err := validarRegras(p); err != nil {
		return domain.Pacote{}, err
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Pacote{}, fmt.Errorf("falha ao salvar pacote no repositório: %w", err)
	}

	s.logger.Info("Pacote cadastrado.", logger.Fields{"pacote_id": created.ID, "user_id": admin.UserID, "capacidade": created.Capacidade})
	return created, nil
}

// Get busca um pacote com a ocupação atual.
func (s *Service) Get(ctx context.Context, id string) (domain.Pacote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Pacote{}, apperror.NewValidationError("ID de pacote inválido.")
	}
	return s.repo.FindByID(ctx, id)
}

// List busca pacotes pelo filtro.
func (s *Service) List(ctx context.Context, f domain.PacoteFilter) ([]domain.Pacote, error) {
	if f.PrecoMin != nil && f.PrecoMax != nil && f.PrecoMin.GreaterThan(*f.PrecoMax) {
		return nil, apperror.NewValidationError("O preço mínimo não pode ser maior que o preço máximo.")
	}
	return s.repo.List(ctx, f)
}

// Update aplica uma atualização parcial. A capacidade não pode ficar abaixo das vagas já ocupadas.
func (s *Service) Update(ctx context.Context, id string, req domain.AtualizarPacoteRequest) (domain.Pacote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Pacote{}, apperror.NewValidationError("ID de pacote inválido.")
	}
	if err := validation.Struct(req); err != nil {
		return domain.Pacote{}, err
	}

	mutate := func(p *domain.Pacote) error {
		if req.Titulo != nil {
			p.Titulo = *req.Titulo
		}
		if req.Descricao != nil {
			p.Descricao = *req.Descricao
		}
		if req.Destino != nil {
			p.Destino = *req.Destino
		}
		if req.Valor != nil {
			p.Valor = *req.Valor
		}
		if req.DataInicio != nil {
			p.DataInicio = *req.DataInicio
		}
		if req.DataFim != nil {
			p.DataFim = *req.DataFim
		}
		if req.Capacidade != nil {
			p.Capacidade = *req.Capacidade
		}
		if req.VideoURL != nil {
			p.VideoURL = *req.VideoURL
		}
		if err := validarRegras(*p); err != nil {
			return err
		}
		if p.Capacidade < p.VagasOcupadas {
			return apperror.NewConflictError(fmt.Sprintf(
				"A capacidade não pode ser menor que as %d vagas já reservadas.", p.VagasOcupadas))
		}
		return nil
	}

	updated, err := s.repo.Update(ctx, id, mutate, req.Imagens)
	if err != nil {
		return domain.Pacote{}, err
	}
	return updated, nil
}

// Delete exclui um pacote sem reservas.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("ID de pacote inválido.")
	}
	return s.repo.Delete(ctx, id)
}
