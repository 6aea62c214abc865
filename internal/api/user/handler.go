package user

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"decolei/internal/api/response"
	"decolei/internal/domain"
	"decolei/internal/pkg/logger"
)

// UserService define o contrato para as operações de conta de usuário.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	RegisterAdmin(ctx context.Context, admin domain.Principal, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
	List(ctx context.Context, f domain.UserFilter) ([]domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	Me(ctx context.Context, p domain.Principal) (domain.User, error)
	AdminUpdate(ctx context.Context, admin domain.Principal, id string, upd domain.UserUpdate) (domain.User, error)
	RequestPasswordReset(ctx context.Context, req domain.PasswordResetRequest) (domain.MessageResponse, error)
	ResetPassword(ctx context.Context, req domain.PasswordReset) (domain.MessageResponse, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	response.Send(w, r, h.Logger, data, err, successStatus)
}

// RegisterUserHandler lida com a requisição POST /api/usuario/registrar.
// @Summary Registra um novo cliente
// @Description Cria um usuário com perfil CLIENTE, hasheia a senha e salva no banco de dados.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados de cadastro"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email ou documento já cadastrado"
// @Router /api/usuario/registrar [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := response.Decode(w, r, &reg); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	// O PasswordHash não é serializado (tag `json:"-"`).
	newUser, err := h.Service.Register(r.Context(), reg)
	h.handleServiceResponse(w, r, newUser, err, http.StatusCreated)
}

// RegisterAdminHandler lida com a requisição POST /api/usuario/registrar-admin.
// @Summary Cadastra um novo ADMIN
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registration body domain.UserRegistration true "Dados de cadastro"
// @Success 201 {object} domain.User
// @Failure 403 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Router /api/usuario/registrar-admin [post]
func (h *Handler) RegisterAdminHandler(w http.ResponseWriter, r *http.Request) {
	admin, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	var reg domain.UserRegistration
	if err := response.Decode(w, r, &reg); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	newUser, err := h.Service.RegisterAdmin(r.Context(), admin, reg)
	h.handleServiceResponse(w, r, newUser, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /api/usuario/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe email/senha, verifica a validade e emite um JSON Web Token.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} domain.LoginResponse "Token JWT emitido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /api/usuario/login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	resp, err := h.Service.Login(r.Context(), req)
	h.handleServiceResponse(w, r, resp, err, http.StatusOK)
}

// ListUsersHandler lida com a requisição GET /api/usuario.
// @Summary Lista os usuários
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Param nome query string false "Parte do nome"
// @Param email query string false "Parte do email"
// @Param documento query string false "Parte do documento"
// @Success 200 {array} domain.User
// @Router /api/usuario [get]
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.Service.List(r.Context(), domain.UserFilter{
		Nome:      q.Get("nome"),
		Email:     q.Get("email"),
		Documento: q.Get("documento"),
	})
	h.handleServiceResponse(w, r, users, err, http.StatusOK)
}

// GetUserHandler lida com a requisição GET /api/usuario/{id}.
// @Summary Busca um usuário
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Success 200 {object} domain.User
// @Failure 404 {object} domain.ErrorResponse
// @Router /api/usuario/{id} [get]
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	h.handleServiceResponse(w, r, u, err, http.StatusOK)
}

// MeHandler lida com a requisição GET /api/usuario/me.
// @Summary Dados do usuário autenticado
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Router /api/usuario/me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	p, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	u, err := h.Service.Me(r.Context(), p)
	h.handleServiceResponse(w, r, u, err, http.StatusOK)
}

// AdminUpdateHandler lida com a requisição PUT /api/usuario/admin/atualizar/{id}.
// @Summary Atualiza dados e perfil de um usuário
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param usuario body domain.UserUpdate true "Campos a alterar"
// @Success 200 {object} domain.User
// @Failure 403 {object} domain.ErrorResponse "ADMIN tentando remover o próprio perfil"
// @Router /api/usuario/admin/atualizar/{id} [put]
func (h *Handler) AdminUpdateHandler(w http.ResponseWriter, r *http.Request) {
	admin, err := response.Principal(r)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	var upd domain.UserUpdate
	if err := response.Decode(w, r, &upd); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	u, err := h.Service.AdminUpdate(r.Context(), admin, mux.Vars(r)["id"], upd)
	h.handleServiceResponse(w, r, u, err, http.StatusOK)
}

// RecuperarSenhaHandler lida com a requisição POST /api/usuario/recuperar-senha.
// @Summary Solicita o link de redefinição de senha
// @Description A resposta é a mesma exista ou não a conta.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param pedido body domain.PasswordResetRequest true "Email da conta"
// @Success 200 {object} domain.MessageResponse
// @Router /api/usuario/recuperar-senha [post]
func (h *Handler) RecuperarSenhaHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	resp, err := h.Service.RequestPasswordReset(r.Context(), req)
	h.handleServiceResponse(w, r, resp, err, http.StatusOK)
}

// RedefinirSenhaHandler lida com a requisição POST /api/usuario/redefinir-senha.
// @Summary Redefine a senha com o token recebido por email
// @Tags usuarios
// @Accept json
// @Produce json
// @Param redefinicao body domain.PasswordReset true "Email, token e nova senha"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse "Token inválido ou expirado"
// @Router /api/usuario/redefinir-senha [post]
func (h *Handler) RedefinirSenhaHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordReset
	if err := response.Decode(w, r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	resp, err := h.Service.ResetPassword(r.Context(), req)
	h.handleServiceResponse(w, r, resp, err, http.StatusOK)
}
