package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapacidadePadrao é o número de vagas de um pacote quando o admin não informa outro.
const CapacidadePadrao = 30

// Pacote representa uma oferta de viagem vendável, com datas, preço e vagas fixas.
type Pacote struct {
	ID            string          `json:"id"`
	Titulo        string          `json:"titulo"`
	Descricao     string          `json:"descricao"`
	Destino       string          `json:"destino"`
	Valor         decimal.Decimal `json:"valor"`
	DataInicio    time.Time       `json:"dataInicio"`
	DataFim       time.Time       `json:"dataFim"`
	Capacidade    int             `json:"capacidade"`
	VagasOcupadas int             `json:"vagasOcupadas"`
	UsuarioID     string          `json:"usuarioId"`
	VideoURL      string          `json:"videoUrl,omitempty"`
	Imagens       []Imagem        `json:"imagens"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// VagasDisponiveis devolve quantas vagas ainda podem ser reservadas.
func (p Pacote) VagasDisponiveis() int {
	if livres := p.Capacidade - p.VagasOcupadas; livres > 0 {
		return livres
	}
	return 0
}

// Imagem é uma referência de mídia do pacote. Apenas a URL é armazenada.
type Imagem struct {
	ID       string `json:"id"`
	PacoteID string `json:"-"`
	URL      string `json:"url"`
}

// CriarPacoteRequest é o payload de criação de um pacote (ADMIN).
type CriarPacoteRequest struct {
	Titulo     string          `json:"titulo" validate:"required,max=100"`
	Descricao  string          `json:"descricao" validate:"max=500"`
	Destino    string          `json:"destino" validate:"required,max=100"`
	Valor      decimal.Decimal `json:"valor"`
	DataInicio time.Time       `json:"dataInicio" validate:"required"`
	DataFim    time.Time       `json:"dataFim" validate:"required"`
	Capacidade int             `json:"capacidade" validate:"omitempty,min=1,max=1000"`
	VideoURL   string          `json:"videoUrl" validate:"omitempty,url,max=255"`
	Imagens    []string        `json:"imagens" validate:"omitempty,dive,url,max=255"`
}

// AtualizarPacoteRequest é o payload de atualização parcial. Campos nulos não são alterados.
type AtualizarPacoteRequest struct {
	Titulo     *string          `json:"titulo" validate:"omitempty,min=1,max=100"`
	Descricao  *string          `json:"descricao" validate:"omitempty,max=500"`
	Destino    *string          `json:"destino" validate:"omitempty,min=1,max=100"`
	Valor      *decimal.Decimal `json:"valor"`
	DataInicio *time.Time       `json:"dataInicio"`
	DataFim    *time.Time       `json:"dataFim"`
	Capacidade *int             `json:"capacidade" validate:"omitempty,min=1,max=1000"`
	VideoURL   *string          `json:"videoUrl" validate:"omitempty,url,max=255"`
	Imagens    []string         `json:"imagens" validate:"omitempty,dive,url,max=255"`
}

// PacoteFilter define os parâmetros de busca do catálogo. Os filtros se combinam com AND.
type PacoteFilter struct {
	Destino    string
	PrecoMin   *decimal.Decimal
	PrecoMax   *decimal.Decimal
	DataInicio *time.Time
	DataFim    *time.Time
}
