package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// JWTConfig holds configuration for interviewer session tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS
// (default 12) from the environment.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours := 12
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		hours = parsed
	}
	if hours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1, got %d", hours)
	}

	return &JWTConfig{Secret: secret, ExpirationHours: hours}, nil
}

// AuthConfig holds the interviewer login credential. The server runs a
// single operator account; its password arrives pre-hashed so the plain
// text never lives in the environment.
type AuthConfig struct {
	// PasswordHash is the bcrypt hash of the operator password.
	PasswordHash string
	// BcryptCost is used when hashing a new password via the CLI.
	BcryptCost int
}

// NewAuthConfig reads OPERATOR_PASSWORD_HASH (required for the server)
// and BCRYPT_COST (default 12) from the environment.
func NewAuthConfig() (*AuthConfig, error) {
	cost := 12
	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = parsed
	}
	if cost < 10 || cost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}

	return &AuthConfig{
		PasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		BcryptCost:   cost,
	}, nil
}

// HashPassword hashes a password for OPERATOR_PASSWORD_HASH.
func (c *AuthConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a login attempt against the stored hash.
func (c *AuthConfig) VerifyPassword(pw string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw)) == nil
}
