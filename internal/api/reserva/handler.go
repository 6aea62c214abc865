package reserva

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"decolei/internal/api/response"
	"decolei/internal/domain"
	"decolei/internal/pkg/logger"
)

// ReservaService define o contrato que o Handler espera do Gerenciador de Reservas.
type ReservaService interface {
	Create(ctx context.Context, p domain.Principal, req domain.CriarReservaRequest) (domain.Reserva, error)
	UpdateViajantes(ctx context.Context, p domain.Principal, id string, req domain.AtualizarViajantesRequest) (domain.Reserva, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id string, req domain.AtualizarStatusRequest) (domain.Reserva, error)
	Get(ctx context.Context, p domain.Principal, id string) (domain.Reserva, error)
	List(ctx context.Context, p domain.Principal) ([]domain.Reserva, error)
	Minhas(ctx context.Context, p domain.Principal) ([]domain.Reserva, error)
}

// Handler agrupa todos os métodos de Handler de reservas.
type Handler struct {
	Service ReservaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReservaService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Send(w, r, h.Logger, data, err, successStatus)
}

// CreateReservaHandler lida com a requisição POST /api/reserva.
// @Summary Cria uma reserva
// @Description Reserva 1 + len(viajantes) vagas. A verificação de capacidade e a inserção são atômicas.
// @Tags reservas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reserva body domain.CriarReservaRequest true "Pacote e viajantes"
// @Success 201 {object} domain.Reserva
// @Failure 400 {object} domain.ErrorResponse "Validação ou capacidade esgotada"
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/reserva [post]
func (h *Handler) CreateReservaHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	var req domain.CriarReservaRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	res, err := h.Service.Create(r.Context(), p, req)
	h.handleServiceResponse(w, r, res, err, http.StatusCreated)
}

// ListReservasHandler lida com a requisição GET /api/reserva.
// @Summary Lista todas as reservas
// @Tags reservas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Reserva
// @Failure 403 {object} domain.ErrorResponse
// @Router /api/reserva [get]
func (h *Handler) ListReservasHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	reservas, err := h.Service.List(r.Context(), p)
	h.handleServiceResponse(w, r, reservas, err, http.StatusOK)
}

// MinhasReservasHandler lida com a requisição GET /api/reserva/minhas-reservas.
// @Summary Lista as reservas do usuário autenticado
// @Tags reservas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Reserva
// @Router /api/reserva/minhas-reservas [get]
func (h *Handler) MinhasReservasHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	reservas, err := h.Service.Minhas(r.Context(), p)
	h.handleServiceResponse(w, r, reservas, err, http.StatusOK)
}

// GetReservaHandler lida com a requisição GET /api/reserva/{id}.
// @Summary Busca uma reserva
// @Tags reservas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da reserva"
// @Success 200 {object} domain.Reserva
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/reserva/{id} [get]
func (h *Handler) GetReservaHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	res, err := h.Service.Get(r.Context(), p, mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// UpdateViajantesHandler lida com a requisição PUT /api/reserva/{id}/viajantes.
// @Summary Substitui os viajantes de uma reserva pendente
// @Tags reservas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da reserva"
// @Param viajantes body domain.AtualizarViajantesRequest true "Nova lista de viajantes"
// @Success 200 {object} domain.Reserva
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /api/reserva/{id}/viajantes [put]
func (h *Handler) UpdateViajantesHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var req domain.AtualizarViajantesRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	res, err := h.Service.UpdateViajantes(r.Context(), p, mux.Vars(r)["id"], req)
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// UpdateStatusHandler lida com a requisição PUT /api/reserva/{id}.
// @Summary Altera manualmente o status de uma reserva
// @Tags reservas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da reserva"
// @Param status body domain.AtualizarStatusRequest true "PENDENTE, APROVADO ou RECUSADO"
// @Success 200 {object} domain.Reserva
// @Failure 400 {object} domain.ErrorResponse
// @Router /api/reserva/{id} [put]
func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var req domain.AtualizarStatusRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	res, err := h.Service.UpdateStatus(r.Context(), p, mux.Vars(r)["id"], req)
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}
