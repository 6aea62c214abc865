package domain

import "time"

const (
	AcaoAprovar  = "aprovar"
	AcaoRejeitar = "rejeitar"

	StatusExibicaoAprovada = "APROVADA"
	StatusExibicaoPendente = "PENDENTE"
)

// Avaliacao é a nota de um cliente para um pacote já realizado. Só aparece
// publicamente depois de aprovada por um ADMIN.
type Avaliacao struct {
	ID            string    `json:"id"`
	UsuarioID     string    `json:"usuarioId"`
	PacoteID      string    `json:"pacoteViagemId"`
	Nota          int       `json:"nota"`
	Comentario    string    `json:"comentario"`
	Data          time.Time `json:"dataAvaliacao"`
	Aprovada      bool      `json:"aprovada"`
	UsuarioNome   string    `json:"usuarioNome,omitempty"`
	PacoteTitulo  string    `json:"pacoteTitulo,omitempty"`
	PacoteDestino string    `json:"pacoteDestino,omitempty"`
}

// StatusExibicao é o rótulo derivado mostrado ao próprio autor.
func (a Avaliacao) StatusExibicao() string {
	if a.Aprovada {
		return StatusExibicaoAprovada
	}
	return StatusExibicaoPendente
}

// MinhaAvaliacao é a visão do autor sobre a própria avaliação.
type MinhaAvaliacao struct {
	Avaliacao
	Status string `json:"status"`
}

// AvaliacaoRequest é o payload de POST /api/avaliacoes.
type AvaliacaoRequest struct {
	PacoteViagemID string `json:"pacoteViagemId" validate:"required,uuid"`
	Nota           int    `json:"nota"`
	Comentario     string `json:"comentario" validate:"max=1000"`
}

// AcaoAvaliacaoRequest é o payload de moderação (ADMIN).
type AcaoAvaliacaoRequest struct {
	Acao string `json:"acao" validate:"required"`
}

// AvaliacaoFilter restringe as listagens. Campos vazios não filtram.
type AvaliacaoFilter struct {
	Aprovada  *bool
	Destino   string
	PacoteID  string
	UsuarioID string
}
