// Package tasks agenda e executa os jobs assíncronos do sistema sobre o asynq (Redis).
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"decolei/internal/domain"
)

const TypeCompensarBoleto = "pagamento:compensar_boleto"

// NewCompensarBoletoTask monta o job de compensação de um boleto.
func NewCompensarBoletoTask(job domain.CompensacaoBoleto) (*asynq.Task, error) {
	b, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar job de boleto: %w", err)
	}
	return asynq.NewTask(TypeCompensarBoleto, b), nil
}

// taskIDBoleto identifica o job pelo pagamento: um boleto tem no máximo um job.
func taskIDBoleto(pagamentoID string) string {
	return "boleto:" + pagamentoID
}
