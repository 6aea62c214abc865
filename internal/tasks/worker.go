package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
)

// BoletoProcessor executa a compensação. Implementado pelo Processador de Pagamentos.
type BoletoProcessor interface {
	CompensarBoleto(ctx context.Context, job domain.CompensacaoBoleto) error
}

// NewServer cria o servidor asynq que consome os jobs no mesmo processo da API.
func NewServer(redisAddr, redisPassword string, concurrency int, log logger.Logger) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword},
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{"default": 1},
			Logger:      asynqLogger{log},
		},
	)
}

// NewServeMux registra os handlers de cada tipo de job.
func NewServeMux(boletos BoletoProcessor, log logger.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCompensarBoleto, HandleCompensarBoleto(boletos, log))
	return mux
}

// HandleCompensarBoleto decodifica o job e chama o processador. Payload inválido
// e pagamento inexistente não são reprocessados.
func HandleCompensarBoleto(boletos BoletoProcessor, log logger.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var job domain.CompensacaoBoleto
		if err := json.Unmarshal(task.Payload(), &job); err != nil {
			log.Error("Payload inválido no job de boleto.", err)
			return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
		}

		log.Debug("Executando compensação de boleto.", logger.Fields{"pagamento_id": job.PagamentoID})
		if err := boletos.CompensarBoleto(ctx, job); err != nil {
			var notFound *apperror.NotFoundError
			if errors.As(err, &notFound) {
				log.Warn("Pagamento do job de boleto não existe mais.", logger.Fields{"pagamento_id": job.PagamentoID})
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			log.Error("Falha ao compensar boleto. O job será reprocessado.", err, logger.Fields{"pagamento_id": job.PagamentoID})
			return err
		}
		return nil
	}
}

// asynqLogger encaminha os logs internos do asynq para o logger da aplicação.
type asynqLogger struct {
	log logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...), nil) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...), nil) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...), nil) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...), nil) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(fmt.Sprint(args...), nil) }
