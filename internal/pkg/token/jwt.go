package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"decolei/internal/domain"
)

const issuer = "Decolei-API"

// ErrInvalidToken é devolvido para qualquer token rejeitado (assinatura, expiração, formato).
var ErrInvalidToken = errors.New("token inválido")

// Claims são as informações gravadas no JWT: o id do usuário e o perfil.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"perfil"`
	jwt.RegisteredClaims
}

// Principal converte as claims validadas na identidade da requisição.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.UserID, Role: domain.UserRole(c.Role)}
}

// Service assina e valida tokens HS256.
type Service struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewService cria uma nova instância do serviço Token.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
		now:       time.Now,
	}
}

// GenerateToken cria um novo JWT assinado contendo o ID e o perfil do usuário.
func (s *Service) GenerateToken(userID string, role domain.UserRole) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token: %w", err)
	}
	return signed, nil
}

// ValidateToken valida o token e retorna as claims se for válido.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if _, ok := domain.ParseUserRole(claims.Role); !ok {
		return nil, fmt.Errorf("%w: perfil desconhecido", ErrInvalidToken)
	}

	return claims, nil
}
