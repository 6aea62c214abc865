package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decolei/internal/domain"
	apperror "decolei/internal/errors"
	"decolei/internal/pkg/logger"
)

type fakeEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.task, f.opts = task, opts
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "boleto:p1", NextProcessAt: time.Now().Add(time.Minute)}, nil
}

type fakeProcessor struct {
	got domain.CompensacaoBoleto
	err error
}

func (f *fakeProcessor) CompensarBoleto(_ context.Context, job domain.CompensacaoBoleto) error {
	f.got = job
	return f.err
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) (interface{}, bool) {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value(), true
		}
	}
	return nil, false
}

func TestScheduleBoleto_AgendaComAtrasoEID(t *testing.T) {
	enq := &fakeEnqueuer{}
	s := &Scheduler{client: enq, logger: logger.NewNop()}
	job := domain.CompensacaoBoleto{PagamentoID: "p1", Email: "a@b.com", ReservaNumero: "ABC"}

	err := s.ScheduleBoleto(context.Background(), job, 60*time.Second)

	require.NoError(t, err)
	assert.Equal(t, TypeCompensarBoleto, enq.task.Type())

	var payload domain.CompensacaoBoleto
	require.NoError(t, json.Unmarshal(enq.task.Payload(), &payload))
	assert.Equal(t, job, payload)

	delay, ok := optionValue(enq.opts, asynq.ProcessInOpt)
	require.True(t, ok)
	assert.Equal(t, 60*time.Second, delay)

	id, ok := optionValue(enq.opts, asynq.TaskIDOpt)
	require.True(t, ok)
	assert.Equal(t, "boleto:p1", id)
}

func TestScheduleBoleto_JobDuplicadoNaoEErro(t *testing.T) {
	s := &Scheduler{client: &fakeEnqueuer{err: asynq.ErrTaskIDConflict}, logger: logger.NewNop()}

	err := s.ScheduleBoleto(context.Background(), domain.CompensacaoBoleto{PagamentoID: "p1"}, time.Minute)

	assert.NoError(t, err)
}

func TestScheduleBoleto_FalhaDoRedis(t *testing.T) {
	s := &Scheduler{client: &fakeEnqueuer{err: errors.New("dial tcp: connection refused")}, logger: logger.NewNop()}

	err := s.ScheduleBoleto(context.Background(), domain.CompensacaoBoleto{PagamentoID: "p1"}, time.Minute)

	assert.Error(t, err)
}

func TestHandleCompensarBoleto(t *testing.T) {
	job := domain.CompensacaoBoleto{PagamentoID: "p1", NomeCompleto: "Maria"}
	task, err := NewCompensarBoletoTask(job)
	require.NoError(t, err)

	t.Run("sucesso", func(t *testing.T) {
		proc := &fakeProcessor{}
		err := HandleCompensarBoleto(proc, logger.NewNop())(context.Background(), task)

		assert.NoError(t, err)
		assert.Equal(t, job, proc.got)
	})

	t.Run("pagamento inexistente nao e reprocessado", func(t *testing.T) {
		proc := &fakeProcessor{err: apperror.NewNotFoundError("Pagamento não existe.")}
		err := HandleCompensarBoleto(proc, logger.NewNop())(context.Background(), task)

		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("falha de banco e reprocessada", func(t *testing.T) {
		proc := &fakeProcessor{err: apperror.NewDBError("Falha ao compensar boleto", errors.New("timeout"))}
		err := HandleCompensarBoleto(proc, logger.NewNop())(context.Background(), task)

		assert.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("payload invalido", func(t *testing.T) {
		proc := &fakeProcessor{}
		err := HandleCompensarBoleto(proc, logger.NewNop())(context.Background(), asynq.NewTask(TypeCompensarBoleto, []byte("{")))

		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, proc.got.PagamentoID)
	})
}
