package pacote

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"decolei/internal/api/response"
	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
)

// PacoteService define o contrato que o Handler espera da camada de Serviço.
type PacoteService interface {
	Create(ctx context.Context, admin domain.Principal, req domain.CriarPacoteRequest) (domain.Pacote, error)
	Get(ctx context.Context, id string) (domain.Pacote, error)
	List(ctx context.Context, f domain.PacoteFilter) ([]domain.Pacote, error)
	Update(ctx context.Context, id string, req domain.AtualizarPacoteRequest) (domain.Pacote, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler do catálogo de pacotes.
type Handler struct {
	Service PacoteService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PacoteService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Send(w, r, h.Logger, data, err, successStatus)
}

// ListPacotesHandler lida com a requisição GET /api/pacotes.
// @Summary Lista pacotes de viagem
// @Description Filtros opcionais combinados com AND. O destino é comparado sem diferenciar caixa.
// @Tags pacotes
// @Produce json
// @Param destino query string false "Parte do destino"
// @Param precoMin query number false "Preço mínimo"
// @Param precoMax query number false "Preço máximo"
// @Param dataInicio query string false "Início a partir de (AAAA-MM-DD)"
// @Param dataFim query string false "Fim até (AAAA-MM-DD)"
// @Success 200 {array} domain.Pacote
// @Failure 400 {object} domain.ErrorResponse
// @Router /api/pacotes [get]
func (h *Handler) ListPacotesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	pacotes, err := h.Service.List(r.Context(), filter)
	h.handleServiceResponse(w, r, pacotes, err, http.StatusOK)
}

// GetPacoteHandler lida com a requisição GET /api/pacotes/{id}.
// @Summary Busca um pacote
// @Tags pacotes
// @Produce json
// @Param id path string true "ID do pacote"
// @Success 200 {object} domain.Pacote
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/pacotes/{id} [get]
func (h *Handler) GetPacoteHandler(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, p, err, http.StatusOK)
}

// CreatePacoteHandler lida com a requisição POST /api/pacotes.
// @Summary Cadastra um pacote
// @Tags pacotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pacote body domain.CriarPacoteRequest true "Dados do pacote"
// @Success 201 {object} domain.Pacote
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /api/pacotes [post]
func (h *Handler) CreatePacoteHandler(w http.ResponseWriter, r *http.Request) {
	admin, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	var req domain.CriarPacoteRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	p, err := h.Service.Create(r.Context(), admin, req)
	h.handleServiceResponse(w, r, p, err, http.StatusCreated)
}

// UpdatePacoteHandler lida com a requisição PUT /api/pacotes/{id}.
// @Summary Atualiza parcialmente um pacote
// @Tags pacotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pacote"
// @Param pacote body domain.AtualizarPacoteRequest true "Campos a alterar"
// @Success 200 {object} domain.Pacote
// @Failure 409 {object} domain.ErrorResponse
// @Router /api/pacotes/{id} [put]
func (h *Handler) UpdatePacoteHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.AtualizarPacoteRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	p, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], req)
	h.handleServiceResponse(w, r, p, err, http.StatusOK)
}

// DeletePacoteHandler lida com a requisição DELETE /api/pacotes/{id}.
// @Summary Exclui um pacote sem reservas
// @Tags pacotes
// @Security BearerAuth
// @Param id path string true "ID do pacote"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse
// @Router /api/pacotes/{id} [delete]
func (h *Handler) DeletePacoteHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

func parseFilter(r *http.Request) (domain.PacoteFilter, error) {
	q := r.URL.Query()
	f := domain.PacoteFilter{Destino: strings.TrimSpace(q.Get("destino"))}

	var err error
	if f.PrecoMin, err = parseDecimal(q.Get("precoMin"), "precoMin"); err != nil {
		return f, err
	}
	if f.PrecoMax, err = parseDecimal(q.Get("precoMax"), "precoMax"); err != nil {
		return f, err
	}
	if f.DataInicio, err = parseData(q.Get("dataInicio"), "dataInicio"); err != nil {
		return f, err
	}
	if f.DataFim, err = parseData(q.Get("dataFim"), "dataFim"); err != nil {
		return f, err
	}
	return f, nil
}

func parseDecimal(v, campo string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, apperror.NewValidationError("o parâmetro '" + campo + "' deve ser numérico")
	}
	return &d, nil
}

func parseData(v, campo string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.NewValidationError("o parâmetro '" + campo + "' deve estar no formato AAAA-MM-DD")
}
