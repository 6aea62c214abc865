package avaliacao

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"decolei/internal/api/response"
	"decolei/internal/domain"
	"decolei/internal/pkg/logger"
)

// AvaliacaoService define o contrato que o Handler espera da Moderação de Avaliações.
type AvaliacaoService interface {
	Submit(ctx context.Context, p domain.Principal, req domain.AvaliacaoRequest) (domain.Avaliacao, error)
	Moderate(ctx context.Context, admin domain.Principal, id string, req domain.AcaoAvaliacaoRequest) error
	Get(ctx context.Context, id string) (domain.Avaliacao, error)
	ListPendentes(ctx context.Context, destino string) ([]domain.Avaliacao, error)
	ListAprovadas(ctx context.Context, destino string) ([]domain.Avaliacao, error)
	ListPorPacote(ctx context.Context, pacoteID string) ([]domain.Avaliacao, error)
	Minhas(ctx context.Context, p domain.Principal) ([]domain.MinhaAvaliacao, error)
}

// Handler agrupa todos os métodos de Handler de avaliações.
type Handler struct {
	Service AvaliacaoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AvaliacaoService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Send(w, r, h.Logger, data, err, successStatus)
}

// SubmitAvaliacaoHandler lida com a requisição POST /api/avaliacoes.
// @Summary Avalia um pacote já realizado
// @Description Exige reserva APROVADA do pacote e viagem encerrada. A avaliação aguarda moderação.
// @Tags avaliacoes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param avaliacao body domain.AvaliacaoRequest true "Nota de 1 a 5 e comentário"
// @Success 201 {object} domain.Avaliacao
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 412 {object} domain.ErrorResponse "Sem reserva elegível"
// @Router /api/avaliacoes [post]
func (h *Handler) SubmitAvaliacaoHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	var req domain.AvaliacaoRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	a, err := h.Service.Submit(r.Context(), p, req)
	h.handleServiceResponse(w, r, a, err, http.StatusCreated)
}

// ModerarAvaliacaoHandler lida com a requisição PUT /api/avaliacoes/{id}.
// @Summary Aprova ou rejeita uma avaliação
// @Description "aprovar" publica a avaliação. "rejeitar" a exclui definitivamente.
// @Tags avaliacoes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da avaliação"
// @Param acao body domain.AcaoAvaliacaoRequest true "aprovar ou rejeitar"
// @Success 200 {object} domain.MessageResponse
// @Failure 409 {object} domain.ErrorResponse
// @Router /api/avaliacoes/{id} [put]
func (h *Handler) ModerarAvaliacaoHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var req domain.AcaoAvaliacaoRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if err := h.Service.Moderate(r.Context(), p, mux.Vars(r)["id"], req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, domain.MessageResponse{Mensagem: "Avaliação moderada com sucesso."}, nil, http.StatusOK)
}

// GetAvaliacaoHandler lida com a requisição GET /api/avaliacoes/{id}.
// @Summary Busca uma avaliação
// @Tags avaliacoes
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da avaliação"
// @Success 200 {object} domain.Avaliacao
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/avaliacoes/{id} [get]
func (h *Handler) GetAvaliacaoHandler(w http.ResponseWriter, r *http.Request) {
	a, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, a, err, http.StatusOK)
}

// ListPendentesHandler lida com a requisição GET /api/avaliacoes/pendentes.
// @Summary Lista avaliações aguardando moderação
// @Tags avaliacoes
// @Produce json
// @Security BearerAuth
// @Param destino query string false "Parte do destino"
// @Success 200 {array} domain.Avaliacao
// @Router /api/avaliacoes/pendentes [get]
func (h *Handler) ListPendentesHandler(w http.ResponseWriter, r *http.Request) {
	lista, err := h.Service.ListPendentes(r.Context(), r.URL.Query().Get("destino"))
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}

// ListAprovadasHandler lida com a requisição GET /api/avaliacoes/aprovadas.
// @Summary Lista avaliações aprovadas
// @Tags avaliacoes
// @Produce json
// @Security BearerAuth
// @Param destino query string false "Parte do destino"
// @Success 200 {array} domain.Avaliacao
// @Router /api/avaliacoes/aprovadas [get]
func (h *Handler) ListAprovadasHandler(w http.ResponseWriter, r *http.Request) {
	lista, err := h.Service.ListAprovadas(r.Context(), r.URL.Query().Get("destino"))
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}

// ListPorPacoteHandler lida com a requisição pública GET /api/avaliacoes/pacote/{id}.
// @Summary Lista as avaliações aprovadas de um pacote
// @Tags avaliacoes
// @Produce json
// @Param id path string true "ID do pacote"
// @Success 200 {array} domain.Avaliacao
// @Router /api/avaliacoes/pacote/{id} [get]
func (h *Handler) ListPorPacoteHandler(w http.ResponseWriter, r *http.Request) {
	lista, err := h.Service.ListPorPacote(r.Context(), mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}

// MinhasAvaliacoesHandler lida com a requisição GET /api/avaliacoes/minhas.
// @Summary Lista as avaliações do usuário autenticado
// @Tags avaliacoes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MinhaAvaliacao
// @Router /api/avaliacoes/minhas [get]
func (h *Handler) MinhasAvaliacoesHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	lista, err := h.Service.Minhas(r.Context(), p)
	h.handleServiceResponse(w, r, lista, err, http.StatusOK)
}
