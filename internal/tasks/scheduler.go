package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"decolei/internal/domain"
	"decolei/internal/pkg/logger"
)

const maxRetryBoleto = 10

// enqueuer é o pedaço do asynq.Client usado pelo Scheduler.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enfileira jobs com atraso no Redis. O job sobrevive a reinícios do processo.
type Scheduler struct {
	client enqueuer
	logger logger.Logger
}

// NewScheduler cria o Scheduler sobre um cliente asynq.
func NewScheduler(client *asynq.Client, log logger.Logger) *Scheduler {
	return &Scheduler{client: client, logger: log}
}

// ScheduleBoleto agenda a compensação do boleto para daqui a delay. Reagendar o
// mesmo pagamento não cria um segundo job.
func (s *Scheduler) ScheduleBoleto(ctx context.Context, job domain.CompensacaoBoleto, delay time.Duration) error {
	task, err := NewCompensarBoletoTask(job)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(delay),
		asynq.TaskID(taskIDBoleto(job.PagamentoID)),
		asynq.MaxRetry(maxRetryBoleto),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Info("Compensação do boleto já estava agendada.", logger.Fields{"pagamento_id": job.PagamentoID})
		return nil
	}
	if err != nil {
		return fmt.Errorf("falha ao agendar compensação do boleto %s: %w", job.PagamentoID, err)
	}

	s.logger.Info("Compensação do boleto agendada.", logger.Fields{
		"pagamento_id": job.PagamentoID,
		"task_id":      info.ID,
		"executa_em":   info.NextProcessAt,
	})
	return nil
}
