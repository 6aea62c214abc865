package mailer

import (
	"bytes"
	"context"
	"html/template"

	"decolei/internal/domain"
)

var (
	statusTmpl = template.Must(template.New("status").Parse(`<h2>Olá, {{.Nome}}!</h2>
<p>Recebemos o seu pagamento da reserva <strong>{{.Reserva}}</strong> via {{.Metodo}}.</p>
<p>Status atual: <strong>{{.Status}}</strong></p>
{{if .Pendente}}<p>Assim que o boleto for compensado você receberá uma nova confirmação.</p>{{end}}
<p>Comprovante: <a href="{{.Comprovante}}">{{.Comprovante}}</a></p>
<p>Equipe Decolei</p>`))

	compensadoTmpl = template.Must(template.New("compensado").Parse(`<h2>Olá, {{.Nome}}!</h2>
<p>O boleto da reserva <strong>{{.Reserva}}</strong> foi compensado e o pagamento está <strong>APROVADO</strong>.</p>
<p>Boa viagem!</p>
<p>Equipe Decolei</p>`))

	senhaTmpl = template.Must(template.New("senha").Parse(`<p>Recebemos um pedido para redefinir a sua senha.</p>
<p><a href="{{.Link}}">Clique aqui para criar uma nova senha</a>. O link expira em 1 hora.</p>
<p>Se não foi você, ignore este email.</p>`))
)

type pagamentoView struct {
	Nome        string
	Reserva     string
	Metodo      domain.MetodoPagamento
	Status      domain.Status
	Comprovante string
	Pendente    bool
}

// Notifier monta e envia as notificações de pagamento e de senha.
type Notifier struct {
	sender Sender
}

// NewNotifier cria o Notifier sobre um Sender.
func NewNotifier(sender Sender) *Notifier {
	return &Notifier{sender: sender}
}

// PagamentoRecebido informa o resultado imediato de um pagamento.
func (n *Notifier) PagamentoRecebido(ctx context.Context, c domain.Cobranca, p domain.Pagamento) error {
	body, err := render(statusTmpl, pagamentoView{
		Nome:        c.NomeCompleto,
		Reserva:     c.ReservaNum,
		Metodo:      p.Metodo,
		Status:      p.Status,
		Comprovante: p.ComprovanteURL,
		Pendente:    p.Status == domain.StatusPendente,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, c.Email, "Decolei - Status do pagamento", body)
}

// BoletoCompensado confirma a aprovação tardia de um boleto.
func (n *Notifier) BoletoCompensado(ctx context.Context, c domain.Cobranca, p domain.Pagamento) error {
	body, err := render(compensadoTmpl, pagamentoView{Nome: c.NomeCompleto, Reserva: c.ReservaNum})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, c.Email, "Decolei - Boleto compensado", body)
}

// RecuperacaoSenha envia o link de redefinição.
func (n *Notifier) RecuperacaoSenha(ctx context.Context, email, link string) error {
	body, err := render(senhaTmpl, struct{ Link string }{link})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, email, "Decolei - Recuperação de senha", body)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
