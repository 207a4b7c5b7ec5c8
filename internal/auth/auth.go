package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user and business the token was issued for.
type Claims struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and validates access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, businessID string) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	Issuer         string

	now func() time.Time
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
