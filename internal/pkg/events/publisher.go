// Package events publica eventos de domínio no RabbitMQ. A publicação é
// best-effort: falhas são registradas e nunca interrompem o fluxo principal.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"decolei/internal/pkg/logger"
)

const (
	QueueReservaCriada     = "reserva.criada"
	QueuePagamentoAprovado = "pagamento.aprovado"
)

// ReservaCriada é emitido após a inserção de uma reserva.
type ReservaCriada struct {
	ReservaID string    `json:"reservaId"`
	Numero    string    `json:"numero"`
	UsuarioID string    `json:"usuarioId"`
	PacoteID  string    `json:"pacoteViagemId"`
	Vagas     int       `json:"vagas"`
	Ocorreu   time.Time `json:"ocorreuEm"`
}

// PagamentoAprovado é emitido a cada aprovação, síncrona ou por compensação de boleto.
type PagamentoAprovado struct {
	PagamentoID string    `json:"pagamentoId"`
	ReservaID   string    `json:"reservaId"`
	Metodo      string    `json:"metodo"`
	Valor       string    `json:"valor"`
	Ocorreu     time.Time `json:"ocorreuEm"`
}

// Publisher entrega um evento numa fila.
type Publisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
}

// AMQPPublisher publica mensagens persistentes em filas duráveis.
type AMQPPublisher struct {
	url string
	log logger.Logger
}

// NewAMQPPublisher cria o publisher. A conexão é aberta a cada publicação.
func NewAMQPPublisher(url string, log logger.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento %s: %w", queue, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("RabbitMQ: falha ao conectar.", err, logger.Fields{"queue": queue})
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("RabbitMQ: falha ao abrir canal.", err, logger.Fields{"queue": queue})
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Error("RabbitMQ: falha ao declarar fila.", err, logger.Fields{"queue": queue})
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.log.Error("RabbitMQ: falha ao publicar.", err, logger.Fields{"queue": queue})
		return err
	}

	p.log.Debug("Evento publicado.", logger.Fields{"queue": queue})
	return nil
}

// NopPublisher descarta eventos. Usado quando AMQP_URL não está configurada.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
