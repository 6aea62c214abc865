// Package mailer envia os emails transacionais do Decolei.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"decolei/internal/pkg/logger"
)

// Sender entrega uma mensagem HTML para um destinatário.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender envia via SMTP usando gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender cria o remetente SMTP.
func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Send abre uma conexão, envia e fecha. O contexto é verificado antes da discagem.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("falha ao enviar email para %s: %w", to, err)
	}
	return nil
}

// LogSender apenas registra o email. Usado quando não há SMTP configurado.
type LogSender struct {
	log logger.Logger
}

// NewLogSender cria o remetente que só registra em log.
func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, _ string) error {
	s.log.Info("SMTP não configurado. Email não enviado.", logger.Fields{"to": to, "subject": subject})
	return nil
}
