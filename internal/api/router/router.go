package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"decolei/internal/api/avaliacao"
	"decolei/internal/api/pacote"
	"decolei/internal/api/pagamento"
	"decolei/internal/api/reserva"
	"decolei/internal/api/user"
	"decolei/internal/domain"
	"decolei/internal/pkg/cache"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/middleware"

	_ "decolei/docs" // registra a especificação servida em /swagger/
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Pacote    *pacote.Handler
	Reserva   *reserva.Handler
	Pagamento *pagamento.Handler
	Avaliacao *avaliacao.Handler
	User      *user.Handler
}

// Options configura os middlewares globais.
type Options struct {
	Tokens          middleware.TokenValidator
	Cache           cache.Client
	Logger          logger.Logger
	AllowedOrigin   string
	RateLimit       int
	RateLimitPeriod time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	r := mux.NewRouter()

	// --- 1. Middlewares globais ---
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.RateLimiter(opts.Cache, opts.RateLimit, opts.RateLimitPeriod, opts.Logger))

	auth := middleware.NewAuthMiddleware(opts.Tokens)
	// protect encadeia autenticação e, se houver perfis, a checagem de permissão.
	protect := func(fn http.HandlerFunc, roles ...domain.UserRole) http.Handler {
		var next http.Handler = fn
		if len(roles) > 0 {
			next = middleware.PermissionMiddleware(roles...)(next)
		}
		return auth(next)
	}

	// --- 2. Health check e documentação ---
	r.HandleFunc("/ping", PingHandler).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// --- 3. Catálogo de pacotes ---
	r.HandleFunc("/api/pacotes", h.Pacote.ListPacotesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/pacotes/{id}", h.Pacote.GetPacoteHandler).Methods(http.MethodGet)
	r.Handle("/api/pacotes", protect(h.Pacote.CreatePacoteHandler, domain.RoleAdmin)).Methods(http.MethodPost)
	r.Handle("/api/pacotes/{id}", protect(h.Pacote.UpdatePacoteHandler, domain.RoleAdmin)).Methods(http.MethodPut)
	r.Handle("/api/pacotes/{id}", protect(h.Pacote.DeletePacoteHandler, domain.RoleAdmin)).Methods(http.MethodDelete)

	// --- 4. Reservas ---
	// Rotas fixas antes de /{id}.
	r.Handle("/api/reserva/minhas-reservas", protect(h.Reserva.MinhasReservasHandler)).Methods(http.MethodGet)
	r.Handle("/api/reserva", protect(h.Reserva.CreateReservaHandler)).Methods(http.MethodPost)
	r.Handle("/api/reserva", protect(h.Reserva.ListReservasHandler, domain.RoleAtendente, domain.RoleAdmin)).Methods(http.MethodGet)
	r.Handle("/api/reserva/{id}", protect(h.Reserva.GetReservaHandler)).Methods(http.MethodGet)
	r.Handle("/api/reserva/{id}/viajantes", protect(h.Reserva.UpdateViajantesHandler, domain.RoleCliente, domain.RoleAdmin)).Methods(http.MethodPut)
	r.Handle("/api/reserva/{id}", protect(h.Reserva.UpdateStatusHandler, domain.RoleAtendente, domain.RoleAdmin)).Methods(http.MethodPut)

	// --- 5. Pagamentos ---
	r.Handle("/pagamentos", protect(h.Pagamento.SubmitPagamentoHandler, domain.RoleAdmin, domain.RoleCliente)).Methods(http.MethodPost)
	r.Handle("/pagamentos/status/{id}", protect(h.Pagamento.StatusPagamentoHandler, domain.RoleAdmin)).Methods(http.MethodGet)
	r.Handle("/pagamentos/{id}", protect(h.Pagamento.AtualizarStatusHandler, domain.RoleAdmin)).Methods(http.MethodPut)

	// --- 6. Avaliações ---
	r.HandleFunc("/api/avaliacoes/pacote/{id}", h.Avaliacao.ListPorPacoteHandler).Methods(http.MethodGet)
	r.Handle("/api/avaliacoes/minhas", protect(h.Avaliacao.MinhasAvaliacoesHandler)).Methods(http.MethodGet)
	r.Handle("/api/avaliacoes/pendentes", protect(h.Avaliacao.ListPendentesHandler, domain.RoleAdmin)).Methods(http.MethodGet)
	r.Handle("/api/avaliacoes/aprovadas", protect(h.Avaliacao.ListAprovadasHandler, domain.RoleAdmin)).Methods(http.MethodGet)
	r.Handle("/api/avaliacoes", protect(h.Avaliacao.SubmitAvaliacaoHandler, domain.RoleCliente)).Methods(http.MethodPost)
	r.Handle("/api/avaliacoes/{id}", protect(h.Avaliacao.GetAvaliacaoHandler, domain.RoleAdmin)).Methods(http.MethodGet)
	r.Handle("/api/avaliacoes/{id}", protect(h.Avaliacao.ModerarAvaliacaoHandler, domain.RoleAdmin)).Methods(http.MethodPut)

	// --- 7. Usuários ---
	r.HandleFunc("/api/usuario/registrar", h.User.RegisterUserHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/usuario/login", h.User.LoginUserHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/usuario/recuperar-senha", h.User.RecuperarSenhaHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/usuario/redefinir-senha", h.User.RedefinirSenhaHandler).Methods(http.MethodPost)
	r.Handle("/api/usuario/registrar-admin", protect(h.User.RegisterAdminHandler, domain.RoleAdmin)).Methods(http.MethodPost)
	r.Handle("/api/usuario/me", protect(h.User.MeHandler)).Methods(http.MethodGet)
	r.Handle("/api/usuario/admin/atualizar/{id}", protect(h.User.AdminUpdateHandler, domain.RoleAdmin)).Methods(http.MethodPut)
	r.Handle("/api/usuario", protect(h.User.ListUsersHandler, domain.RoleAdmin, domain.RoleAtendente)).Methods(http.MethodGet)
	r.Handle("/api/usuario/{id}", protect(h.User.GetUserHandler, domain.RoleAdmin, domain.RoleAtendente)).Methods(http.MethodGet)

	// O CORS fica fora do mux: preflights OPTIONS não casam com nenhuma rota.
	return middleware.CORS(opts.AllowedOrigin)(r)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
