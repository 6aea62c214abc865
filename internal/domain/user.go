package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	NomeCompleto string    `json:"nomeCompleto"`
	Documento    string    `json:"documento"`
	Telefone     string    `json:"telefone"`
	Role         UserRole  `json:"perfil"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRole é um tipo string para representar o perfil do usuário no sistema.
type UserRole string

const (
	RoleCliente   UserRole = "CLIENTE"
	RoleAtendente UserRole = "ATENDENTE"
	RoleAdmin     UserRole = "ADMIN"
)

// ParseUserRole normaliza e valida um perfil recebido da API.
func ParseUserRole(s string) (UserRole, bool) {
	switch r := UserRole(upper(s)); r {
	case RoleCliente, RoleAtendente, RoleAdmin:
		return r, true
	}
	return "", false
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"senha" validate:"required,min=6,max=100"`
	NomeCompleto string `json:"nomeCompleto" validate:"required,max=100"`
	Documento    string `json:"documento" validate:"required,max=50"`
	Telefone     string `json:"telefone" validate:"omitempty,max=20"`
}

// LoginRequest é o payload do login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required"`
}

// LoginResponse devolve o JWT emitido.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserFilter restringe a listagem de usuários. Cada campo é um "contém" sem
// diferenciar caixa; campos vazios não filtram.
type UserFilter struct {
	Nome      string
	Email     string
	Documento string
}

// UserUpdate é a atualização administrativa de um usuário. Campos nulos não são alterados.
type UserUpdate struct {
	NomeCompleto *string `json:"nomeCompleto" validate:"omitempty,min=1,max=100"`
	Telefone     *string `json:"telefone" validate:"omitempty,max=20"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	Documento    *string `json:"documento" validate:"omitempty,min=1,max=50"`
	Perfil       *string `json:"perfil"`
}

// PasswordResetRequest inicia o fluxo de recuperação de senha.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordReset conclui o fluxo de recuperação com o token recebido por email.
type PasswordReset struct {
	Email     string `json:"email" validate:"required,email"`
	Token     string `json:"token" validate:"required"`
	NovaSenha string `json:"novaSenha" validate:"required,min=6,max=100"`
}

// Principal é a identidade autenticada de uma requisição. É imutável depois de criada
// pelo middleware de autenticação.
type Principal struct {
	UserID string
	Role   UserRole
}

// HasRole informa se o principal possui algum dos perfis informados.
func (p Principal) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// IsStaff identifica ADMIN e ATENDENTE, que enxergam todas as reservas.
func (p Principal) IsStaff() bool {
	return p.HasRole(RoleAdmin, RoleAtendente)
}
