package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetodoPagamento é a forma de pagamento aceita pelo gateway simulado.
type MetodoPagamento string

const (
	MetodoPix           MetodoPagamento = "PIX"
	MetodoBoleto        MetodoPagamento = "BOLETO"
	MetodoCartaoCredito MetodoPagamento = "CARTAO_CREDITO"
	MetodoCartaoDebito  MetodoPagamento = "CARTAO_DEBITO"
)

// ParseMetodo aceita os nomes curtos (CREDITO, DEBITO) e os canônicos.
func ParseMetodo(s string) (MetodoPagamento, bool) {
	switch upper(s) {
	case "PIX":
		return MetodoPix, true
	case "BOLETO":
		return MetodoBoleto, true
	case "CREDITO", "CARTAO_CREDITO":
		return MetodoCartaoCredito, true
	case "DEBITO", "CARTAO_DEBITO":
		return MetodoCartaoDebito, true
	}
	return "", false
}

// IsCartao indica métodos que exigem número de cartão.
func (m MetodoPagamento) IsCartao() bool {
	return m == MetodoCartaoCredito || m == MetodoCartaoDebito
}

// Pagamento é uma tentativa de quitar uma reserva. Nunca é apagado.
type Pagamento struct {
	ID             string          `json:"id"`
	ReservaID      string          `json:"reservaId"`
	Metodo         MetodoPagamento `json:"metodo"`
	Status         Status          `json:"status"`
	Valor          decimal.Decimal `json:"valor"`
	Parcelas       int             `json:"parcelas"`
	ComprovanteURL string          `json:"comprovanteUrl"`
	Data           time.Time       `json:"dataPagamento"`
}

// PagamentoRequest é o payload de POST /pagamentos.
type PagamentoRequest struct {
	ReservaID    string          `json:"reservaId" validate:"required,uuid"`
	NomeCompleto string          `json:"nomeCompleto" validate:"required,max=100"`
	CPF          string          `json:"cpf" validate:"required,max=14"`
	Metodo       string          `json:"metodo" validate:"required"`
	Valor        decimal.Decimal `json:"valor"`
	Parcelas     int             `json:"parcelas" validate:"omitempty,min=1,max=12"`
	NumeroCartao string          `json:"numeroCartao" validate:"omitempty,max=19"`
	Email        string          `json:"email" validate:"required,email"`
}

// PagamentoResponse é o resultado imediato devolvido ao cliente.
type PagamentoResponse struct {
	PagamentoID    string          `json:"pagamentoId"`
	ReservaID      string          `json:"reservaId"`
	Metodo         MetodoPagamento `json:"metodo"`
	Status         Status          `json:"status"`
	ComprovanteURL string          `json:"comprovanteUrl"`
	Mensagem       string          `json:"mensagem"`
}

// StatusPagamentoResponse é a consulta administrativa de um pagamento.
type StatusPagamentoResponse struct {
	PagamentoID            string `json:"pagamentoId"`
	StatusPagamento        Status `json:"statusPagamento"`
	ReservaID              string `json:"reservaId"`
	StatusPagamentoReserva Status `json:"statusPagamentoReserva"`
	StatusReserva          Status `json:"statusReserva"`
}

// AtualizarStatusPagamentoRequest é o payload de PUT /pagamentos/{id}.
type AtualizarStatusPagamentoRequest struct {
	Status string `json:"status" validate:"required"`
}

// NovoPagamento é o registro que o serviço entrega ao repositório. Quando
// AprovarReserva é verdadeiro, a reserva é aprovada na mesma transação.
type NovoPagamento struct {
	Pagamento      Pagamento
	UsuarioID      string
	AprovarReserva bool
}

// Cobranca reúne os dados de contato usados nas notificações de um pagamento.
type Cobranca struct {
	NomeCompleto string
	Email        string
	ReservaNum   string
}

// CompensacaoBoleto é o payload do job de compensação adiada de boleto.
type CompensacaoBoleto struct {
	PagamentoID   string `json:"pagamentoId"`
	NomeCompleto  string `json:"nomeCompleto"`
	Email         string `json:"email"`
	ReservaNumero string `json:"reservaNumero"`
}
