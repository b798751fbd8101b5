package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// CustomClaims represents the custom claims in our JWT tokens
type CustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
}

func (c *CustomClaims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

func (c *CustomClaims) IsAccess() bool {
	return c.TokenType == TokenTypeAccess
}
