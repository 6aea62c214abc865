package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decolei/internal/domain"
)

type captureSender struct {
	to, subject, body string
}

func (c *captureSender) Send(_ context.Context, to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return nil
}

func TestPagamentoRecebido_Boleto(t *testing.T) {
	sender := &captureSender{}
	n := NewNotifier(sender)

	err := n.PagamentoRecebido(context.Background(),
		domain.Cobranca{NomeCompleto: "Ana <Silva>", Email: "ana@ex.com", ReservaNum: "ABC123DEF0"},
		domain.Pagamento{Metodo: domain.MetodoBoleto, Status: domain.StatusPendente, ComprovanteURL: "http://x/comprovante/1"},
	)

	require.NoError(t, err)
	assert.Equal(t, "ana@ex.com", sender.to)
	assert.Contains(t, sender.body, "ABC123DEF0")
	assert.Contains(t, sender.body, "boleto for compensado")
	assert.Contains(t, sender.body, "Ana &lt;Silva&gt;")
}

func TestRecuperacaoSenha(t *testing.T) {
	sender := &captureSender{}

	err := NewNotifier(sender).RecuperacaoSenha(context.Background(), "bob@ex.com", "http://front/redefinir?token=t")

	require.NoError(t, err)
	assert.Equal(t, "Decolei - Recuperação de senha", sender.subject)
	assert.Contains(t, sender.body, "token=t")
}
