package pagamento

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"decolei/internal/api/response"
	"decolei/internal/domain"
	"decolei/internal/pkg/logger"
)

// PagamentoService define o contrato que o Handler espera do Processador de Pagamentos.
type PagamentoService interface {
	Submit(ctx context.Context, p domain.Principal, req domain.PagamentoRequest) (domain.PagamentoResponse, error)
	Status(ctx context.Context, id string) (domain.StatusPagamentoResponse, error)
	AtualizarStatus(ctx context.Context, p domain.Principal, id string, req domain.AtualizarStatusPagamentoRequest) (domain.Pagamento, error)
}

// Handler agrupa todos os métodos de Handler de pagamentos.
type Handler struct {
	Service PagamentoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc PagamentoService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Send(w, r, h.Logger, data, err, successStatus)
}

// SubmitPagamentoHandler lida com a requisição POST /pagamentos.
// @Summary Paga uma reserva
// @Description PIX aprova na hora, BOLETO fica PENDENTE até a compensação, cartão depende do número informado.
// @Tags pagamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pagamento body domain.PagamentoRequest true "Dados do pagamento"
// @Success 201 {object} domain.PagamentoResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Reserva já paga"
// @Router /pagamentos [post]
func (h *Handler) SubmitPagamentoHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	var req domain.PagamentoRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	resp, err := h.Service.Submit(r.Context(), p, req)
	h.handleServiceResponse(w, r, resp, err, http.StatusCreated)
}

// StatusPagamentoHandler lida com a requisição GET /pagamentos/status/{id}.
// @Summary Consulta o status de um pagamento
// @Tags pagamentos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pagamento"
// @Success 200 {object} domain.StatusPagamentoResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /pagamentos/status/{id} [get]
func (h *Handler) StatusPagamentoHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Status(r.Context(), mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, st, err, http.StatusOK)
}

// AtualizarStatusHandler lida com a requisição PUT /pagamentos/{id}.
// @Summary Altera manualmente o status de um pagamento
// @Tags pagamentos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pagamento"
// @Param status body domain.AtualizarStatusPagamentoRequest true "PENDENTE, APROVADO ou RECUSADO"
// @Success 200 {object} domain.Pagamento
// @Failure 409 {object} domain.ErrorResponse
// @Router /pagamentos/{id} [put]
func (h *Handler) AtualizarStatusHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var req domain.AtualizarStatusPagamentoRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	pag, err := h.Service.AtualizarStatus(r.Context(), p, mux.Vars(r)["id"], req)
	h.handleServiceResponse(w, r, pag, err, http.StatusOK)
}
