package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/interview-agent/internal/config"
)

// operatorSubject is the subject claim for the single interviewer account.
const operatorSubject = "operator"

// JWTService issues and validates interviewer session tokens.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a JWT service.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateToken issues a session token for the operator.
func (s *JWTService) GenerateToken() (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   operatorSubject,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks a session token. Implements middleware.TokenValidator.
func (s *JWTService) ValidateToken(tokenString string) error {
	if tokenString == "" {
		return fmt.Errorf("token string is empty")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("token is not valid")
	}
	if claims.Subject != operatorSubject {
		return fmt.Errorf("unexpected token subject %q", claims.Subject)
	}
	return nil
}
