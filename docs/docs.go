// Package docs registra a especificação OpenAPI da API Decolei no swag.
// Mantido à mão a partir das anotações dos handlers em internal/api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/pacotes": {
            "get": {"tags": ["pacotes"], "summary": "Lista pacotes de viagem", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "destino", "in": "query"},
                    {"type": "string", "name": "precoMin", "in": "query"},
                    {"type": "string", "name": "precoMax", "in": "query"},
                    {"type": "string", "name": "dataInicio", "in": "query"},
                    {"type": "string", "name": "dataFim", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Pacote"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["pacotes"], "summary": "Cadastra um pacote",
                "parameters": [{"name": "pacote", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CriarPacoteRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Pacote"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/pacotes/{id}": {
            "get": {"tags": ["pacotes"], "summary": "Busca um pacote",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Pacote"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["pacotes"], "summary": "Atualiza um pacote",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "pacote", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AtualizarPacoteRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Pacote"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["pacotes"], "summary": "Exclui um pacote",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/reserva": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reservas"], "summary": "Lista todas as reservas",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Reserva"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["reservas"], "summary": "Cria uma reserva",
                "parameters": [{"name": "reserva", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CriarReservaRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Reserva"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/reserva/minhas-reservas": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reservas"], "summary": "Reservas do usuário autenticado",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Reserva"}}}}}
        },
        "/api/reserva/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reservas"], "summary": "Busca uma reserva",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Reserva"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["reservas"], "summary": "Altera o status da reserva",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AtualizarStatusRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Reserva"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/reserva/{id}/viajantes": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["reservas"], "summary": "Substitui os viajantes",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "viajantes", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AtualizarViajantesRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Reserva"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/pagamentos": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["pagamentos"], "summary": "Paga uma reserva",
                "parameters": [{"name": "pagamento", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.PagamentoRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.PagamentoResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/pagamentos/status/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["pagamentos"], "summary": "Consulta o status de um pagamento",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.StatusPagamentoResponse"}}}}
        },
        "/pagamentos/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["pagamentos"], "summary": "Atualiza manualmente o status de um pagamento",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AtualizarStatusPagamentoRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Pagamento"}}}}
        },
        "/api/avaliacoes": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["avaliacoes"], "summary": "Avalia um pacote",
                "parameters": [{"name": "avaliacao", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AvaliacaoRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Avaliacao"}}, "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/avaliacoes/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["avaliacoes"], "summary": "Busca uma avaliação",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Avaliacao"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["avaliacoes"], "summary": "Aprova ou rejeita uma avaliação",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "acao", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.AcaoAvaliacaoRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MessageResponse"}}}}
        },
        "/api/avaliacoes/pendentes": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["avaliacoes"], "summary": "Avaliações aguardando moderação",
                "parameters": [{"type": "string", "name": "destino", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Avaliacao"}}}}}
        },
        "/api/avaliacoes/aprovadas": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["avaliacoes"], "summary": "Avaliações aprovadas",
                "parameters": [{"type": "string", "name": "destino", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Avaliacao"}}}}}
        },
        "/api/avaliacoes/pacote/{id}": {
            "get": {"tags": ["avaliacoes"], "summary": "Avaliações públicas de um pacote",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Avaliacao"}}}}}
        },
        "/api/avaliacoes/minhas": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["avaliacoes"], "summary": "Avaliações do usuário autenticado",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.MinhaAvaliacao"}}}}}
        },
        "/api/usuario": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["usuarios"], "summary": "Lista os usuários",
                "parameters": [
                    {"type": "string", "name": "nome", "in": "query"},
                    {"type": "string", "name": "email", "in": "query"},
                    {"type": "string", "name": "documento", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.User"}}}}}
        },
        "/api/usuario/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["usuarios"], "summary": "Busca um usuário",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}}
        },
        "/api/usuario/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["usuarios"], "summary": "Dados do usuário autenticado",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}}
        },
        "/api/usuario/registrar": {
            "post": {"tags": ["usuarios"], "summary": "Registra um novo cliente",
                "parameters": [{"name": "registration", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/usuario/registrar-admin": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["usuarios"], "summary": "Cadastra um novo ADMIN",
                "parameters": [{"name": "registration", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}}}}
        },
        "/api/usuario/login": {
            "post": {"tags": ["usuarios"], "summary": "Autentica um usuário e retorna um JWT",
                "parameters": [{"name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.LoginResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/api/usuario/admin/atualizar/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["usuarios"], "summary": "Atualiza dados e perfil de um usuário",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "usuario", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserUpdate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}}
        },
        "/api/usuario/recuperar-senha": {
            "post": {"tags": ["usuarios"], "summary": "Solicita o link de redefinição de senha",
                "parameters": [{"name": "pedido", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.PasswordResetRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MessageResponse"}}}}
        },
        "/api/usuario/redefinir-senha": {
            "post": {"tags": ["usuarios"], "summary": "Redefine a senha com o token recebido por email",
                "parameters": [{"name": "redefinicao", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.PasswordReset"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.MessageResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        }
    },
    "definitions": {
        "domain.ErrorResponse": {"type": "object", "properties": {"code": {"type": "integer"}, "category": {"type": "string"}, "message": {"type": "string"}}},
        "domain.MessageResponse": {"type": "object", "properties": {"mensagem": {"type": "string"}}},
        "domain.Pacote": {"type": "object"},
        "domain.CriarPacoteRequest": {"type": "object"},
        "domain.AtualizarPacoteRequest": {"type": "object"},
        "domain.Reserva": {"type": "object"},
        "domain.CriarReservaRequest": {"type": "object"},
        "domain.AtualizarViajantesRequest": {"type": "object"},
        "domain.AtualizarStatusRequest": {"type": "object", "properties": {"status": {"type": "string"}}},
        "domain.Pagamento": {"type": "object"},
        "domain.PagamentoRequest": {"type": "object"},
        "domain.PagamentoResponse": {"type": "object"},
        "domain.StatusPagamentoResponse": {"type": "object"},
        "domain.AtualizarStatusPagamentoRequest": {"type": "object", "properties": {"status": {"type": "string"}}},
        "domain.Avaliacao": {"type": "object"},
        "domain.MinhaAvaliacao": {"type": "object"},
        "domain.AvaliacaoRequest": {"type": "object"},
        "domain.AcaoAvaliacaoRequest": {"type": "object", "properties": {"acao": {"type": "string"}}},
        "domain.User": {"type": "object"},
        "domain.UserRegistration": {"type": "object"},
        "domain.UserUpdate": {"type": "object"},
        "domain.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "senha": {"type": "string"}}},
        "domain.LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "domain.PasswordResetRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "domain.PasswordReset": {"type": "object"}
    }
}`

// SwaggerInfo guarda as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Decolei API",
	Description:      "Catálogo de pacotes, reservas, pagamentos e avaliações da agência Decolei.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
