package logger

import (
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields são os campos estruturados anexados a uma entrada de log.
type Fields map[string]interface{}

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository, Worker) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields ...Fields)
	Fatal(msg string, err error)
}

// ZapLogger é a implementação concreta da interface Logger sobre o zap.
type ZapLogger struct {
	z *zap.Logger
}

// NewLogger cria o logger da aplicação. Em produção usa JSON; nos demais
// ambientes, o encoder de desenvolvimento com níveis coloridos.
func NewLogger(level string, env ...string) Logger {
	var cfg zap.Config
	if len(env) > 0 && strings.EqualFold(env[0], "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		log.Fatalf("Falha ao inicializar o logger: %v", err)
	}
	return &ZapLogger{z: z}
}

// NewNop devolve um logger que descarta tudo. Usado nos testes.
func NewNop() Logger {
	return &ZapLogger{z: zap.NewNop()}
}

// Zap expõe o logger subjacente para bibliotecas que precisam dele.
func (l *ZapLogger) Zap() *zap.Logger { return l.z }

// Sync descarrega buffers pendentes.
func (l *ZapLogger) Sync() error { return l.z.Sync() }

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZap(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l *ZapLogger) Debug(msg string, fields Fields) {
	l.z.Debug(msg, toZap(fields)...)
}

func (l *ZapLogger) Info(msg string, fields Fields) {
	l.z.Info(msg, toZap(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields Fields) {
	l.z.Warn(msg, toZap(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields ...Fields) {
	zf := []zap.Field{zap.Error(err)}
	for _, f := range fields {
		zf = append(zf, toZap(f)...)
	}
	l.z.Error(msg, zf...)
}

func (l *ZapLogger) Fatal(msg string, err error) {
	l.z.Fatal(msg, zap.Error(err))
}
