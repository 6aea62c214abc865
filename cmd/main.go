package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"decolei/config"
	"decolei/internal/pkg/cache"
	"decolei/internal/pkg/database"
	"decolei/internal/pkg/events"
	"decolei/internal/pkg/logger"
	"decolei/internal/pkg/mailer"
	"decolei/internal/pkg/token"
	"decolei/internal/tasks"

	// Camadas para Injeção de Dependências
	"decolei/internal/api/avaliacao"
	"decolei/internal/api/pacote"
	"decolei/internal/api/pagamento"
	"decolei/internal/api/reserva"
	"decolei/internal/api/router"
	"decolei/internal/api/user"
	"decolei/internal/repository/avaliacaorepo"
	"decolei/internal/repository/pacoterepo"
	"decolei/internal/repository/pagamentorepo"
	"decolei/internal/repository/reservarepo"
	"decolei/internal/repository/userrepo"
	"decolei/internal/service/avaliacaoservice"
	"decolei/internal/service/pacoteservice"
	"decolei/internal/service/pagamentoservice"
	"decolei/internal/service/reservaservice"
	"decolei/internal/service/userservice"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	appLog.Info("Inicializando serviço Decolei...", logger.Fields{"env": cfg.Environment})

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, appLog)
	defer cacheClient.Close()

	// C. Fila de jobs (asynq sobre o mesmo Redis)
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	queueClient := asynq.NewClient(redisOpt)
	defer queueClient.Close()

	// D. Email: sem SMTP configurado, os emails vão apenas para o log.
	var sender mailer.Sender = mailer.NewLogSender(appLog)
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPSender)
	}
	notifier := mailer.NewNotifier(sender)

	// E. Eventos (RabbitMQ)
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL, appLog)
	} else {
		appLog.Warn("AMQP_URL não definida. Eventos de domínio desabilitados.", nil)
	}

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	pacoteRepo := pacoterepo.NewPacoteRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	reservaRepo := reservarepo.NewReservaRepository(db, cfg.DBTimeout, appLog)
	pagamentoRepo := pagamentorepo.NewPagamentoRepository(db, cfg.DBTimeout, appLog)
	avaliacaoRepo := avaliacaorepo.NewAvaliacaoRepository(db, cfg.DBTimeout, appLog)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)

	pacoteSvc := pacoteservice.NewService(pacoteRepo, appLog)
	reservaSvc := reservaservice.NewService(reservaRepo, publisher, appLog)
	pagamentoSvc := pagamentoservice.NewService(
		pagamentoRepo,
		tasks.NewScheduler(queueClient, appLog),
		notifier,
		publisher,
		pagamentoservice.Config{BoletoDelay: cfg.BoletoDelay, PublicBaseURL: cfg.PublicBaseURL},
		appLog,
	)
	avaliacaoSvc := avaliacaoservice.NewService(avaliacaoRepo, pacoteRepo, appLog)
	userSvc := userservice.NewService(userRepo, tokenSvc, cacheClient, notifier,
		userservice.Config{FrontendURL: cfg.FrontendURL}, appLog)

	handlers := router.Handlers{
		Pacote:    pacote.NewHandler(pacoteSvc, appLog),
		Reserva:   reserva.NewHandler(reservaSvc, appLog),
		Pagamento: pagamento.NewHandler(pagamentoSvc, appLog),
		Avaliacao: avaliacao.NewHandler(avaliacaoSvc, appLog),
		User:      user.NewHandler(userSvc, appLog),
	}
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Worker da compensação de boletos
	worker := tasks.NewServer(cfg.RedisAddr, cfg.RedisPassword, cfg.WorkerConcurrency, appLog)
	if err := worker.Start(tasks.NewServeMux(pagamentoSvc, appLog)); err != nil {
		appLog.Fatal("Falha ao iniciar o worker de boletos.", err)
	}

	// 5. Roteador e Servidor
	r := router.NewRouter(handlers, router.Options{
		Tokens:          tokenSvc,
		Cache:           cacheClient,
		Logger:          appLog,
		AllowedOrigin:   cfg.FrontendURL,
		RateLimit:       cfg.RateLimitMaxRequests,
		RateLimitPeriod: cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor Decolei ouvindo na porta", logger.Fields{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}
	worker.Shutdown()

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
