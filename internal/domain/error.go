package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"CAPACITY_EXCEEDED"`
	Message  string `json:"message" example:"Capacidade esgotada: Não há vagas disponíveis para este pacote."`
}

// MessageResponse é a resposta simples usada por operações sem corpo de domínio.
type MessageResponse struct {
	Mensagem string `json:"mensagem" example:"Avaliação aprovada com sucesso."`
}
