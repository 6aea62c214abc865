package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config armazena todas as configurações do Decolei.
type Config struct {
	// Geral
	Port          string
	Environment   string
	LogLevel      string
	PublicBaseURL string
	FrontendURL   string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache, filas e limitador (Redis)
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Pagamentos
	BoletoDelay       time.Duration
	WorkerConcurrency int

	// Email (SMTP). Sem host, os emails são apenas registrados em log.
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSender string

	// Eventos (RabbitMQ). Vazio desabilita a publicação.
	AMQPURL string
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	port := getEnv("PORT", "8080")

	cfg := &Config{
		Port:          port,
		Environment:   getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:"+port),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),

		// mustGetEnv garante que a aplicação não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getDurationEnv("CACHE_TTL_SEC", 300) * time.Second,

		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		RateLimitMaxRequests: getPositiveIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      time.Duration(getPositiveIntEnv("RATE_LIMIT_PERIOD_MIN", 1)) * time.Minute,

		BoletoDelay:       getDurationEnv("BOLETO_DELAY_SEC", 60) * time.Second,
		WorkerConcurrency: getIntEnv("WORKER_CONCURRENCY", 5),

		SMTPHost:   getEnv("SMTP_HOST", ""),
		SMTPPort:   getIntEnv("SMTP_PORT", 587),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		SMTPSender: getEnv("SMTP_SENDER", "nao-responda@decolei.com.br"),

		AMQPURL: getEnv("AMQP_URL", ""),
	}

	return cfg
}

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	log.Fatalf("Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration,
// ainda sem unidade. Quem chama multiplica pela unidade desejada.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getPositiveIntEnv é o getIntEnv para valores que precisam ser maiores que zero.
func getPositiveIntEnv(key string, defaultValue int) int {
	value := getIntEnv(key, defaultValue)
	if value <= 0 {
		log.Printf("Aviso: %s deve ser maior que zero. Usando padrão (%d).", key, defaultValue)
		return defaultValue
	}
	return value
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
