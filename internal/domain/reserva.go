package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status é o vocabulário único de situação usado por reservas e pagamentos.
type Status string

const (
	StatusPendente Status = "PENDENTE"
	StatusAprovado Status = "APROVADO"
	StatusRecusado Status = "RECUSADO"
)

// transicoes lista, para cada status de reserva, os destinos permitidos além dele mesmo.
var transicoes = map[Status][]Status{
	StatusPendente: {StatusAprovado, StatusRecusado},
	StatusAprovado: {StatusRecusado},
	StatusRecusado: {},
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseStatus converte o texto recebido (em qualquer caixa) para um Status conhecido.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(upper(s)); st {
	case StatusPendente, StatusAprovado, StatusRecusado:
		return st, true
	}
	return "", false
}

// CanTransitionTo informa se uma reserva pode sair de s para next.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transicoes[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatusElegiveisAvaliacao são os status de reserva que permitem avaliar o pacote.
var StatusElegiveisAvaliacao = []Status{StatusAprovado}

// Viajante é um acompanhante nomeado na reserva, além do titular.
type Viajante struct {
	Nome      string `json:"nome" validate:"required,max=100"`
	Documento string `json:"documento" validate:"required,max=50"`
}

// Reserva é a compra de vagas de um pacote por um usuário.
type Reserva struct {
	ID              string          `json:"id"`
	Numero          string          `json:"numero"`
	UsuarioID       string          `json:"usuarioId"`
	PacoteID        string          `json:"pacoteViagemId"`
	Data            time.Time       `json:"dataReserva"`
	ValorTotal      decimal.Decimal `json:"valorTotal"`
	Status          Status          `json:"status"`
	StatusPagamento Status          `json:"statusPagamento"`
	Viajantes       []Viajante      `json:"viajantes"`
	PacoteTitulo    string          `json:"pacoteTitulo,omitempty"`
	PacoteDestino   string          `json:"pacoteDestino,omitempty"`
}

// Vagas é a ocupação da reserva: o titular mais os viajantes nomeados.
func (r Reserva) Vagas() int {
	return VagasPara(len(r.Viajantes))
}

// VagasPara calcula as vagas ocupadas por uma lista de n viajantes.
func VagasPara(n int) int {
	return 1 + n
}

// CriarReservaRequest é o payload de POST /api/reserva.
type CriarReservaRequest struct {
	PacoteViagemID string     `json:"pacoteViagemId" validate:"required,uuid"`
	Viajantes      []Viajante `json:"viajantes" validate:"omitempty,max=50,dive"`
}

// AtualizarViajantesRequest substitui a lista de viajantes de uma reserva pendente.
type AtualizarViajantesRequest struct {
	Viajantes []Viajante `json:"viajantes" validate:"omitempty,max=50,dive"`
}

// AtualizarStatusRequest é o payload de mudança manual de status (ATENDENTE/ADMIN).
type AtualizarStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// NovaReserva é o que o serviço entrega ao repositório para inserção atômica.
type NovaReserva struct {
	ID        string
	Numero    string
	UsuarioID string
	PacoteID  string
	Viajantes []Viajante
	Data      time.Time
}
