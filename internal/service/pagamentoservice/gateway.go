package pagamentoservice

import (
	"strings"

	"decolei/internal/domain"
)

// tamanhoMinimoCartao é o menor número de cartão aceito pelo gateway simulado.
const tamanhoMinimoCartao = 12

// Decisao é a resposta do gateway simulado para uma cobrança.
type Decisao struct {
	Status   domain.Status
	Mensagem string
}

// Decidir aplica a tabela fixa do gateway. Não há chamada de rede.
func Decidir(metodo domain.MetodoPagamento, numeroCartao string) Decisao {
	if metodo.IsCartao() {
		numero := strings.ReplaceAll(strings.TrimSpace(numeroCartao), " ", "")
		if len(numero) >= tamanhoMinimoCartao && numero != "string" {
			return Decisao{domain.StatusAprovado, "Pagamento com cartão aprovado."}
		}
		return Decisao{domain.StatusRecusado, "Pagamento com cartão recusado. Verifique o número do cartão."}
	}

	switch metodo {
	case domain.MetodoPix:
		return Decisao{domain.StatusAprovado, "Pagamento via PIX aprovado."}
	case domain.MetodoBoleto:
		return Decisao{domain.StatusPendente, "Boleto gerado. Aguardando compensação."}
	}
	return Decisao{domain.StatusRecusado, "Forma de pagamento não suportada."}
}
