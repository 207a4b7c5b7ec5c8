package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "performance-bonus"

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	users          UserLookup
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(users UserLookup, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, accessTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: accessTTL,
		Issuer:         defaultIssuer,
		now:            time.Now,
	}
}

// Authenticate resolves a bearer token to an active user of the business the
// token was issued for.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*user.User, error) {
	if tokenString == "" {
		return nil, internal.ErrInvalidToken
	}

	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("token for unknown user", "user_id", claims.UserID)
			return nil, internal.ErrInvalidToken
		}
		return nil, err
	}

	if u.BusinessID != claims.BusinessID {
		s.logger.Warn("token business does not match user", "user_id", u.ID, "token_business_id", claims.BusinessID)
		return nil, internal.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}

	return u, nil
}

// IssueToken signs an access token for an existing active user.
func (s *Service) IssueToken(ctx context.Context, userID string) (TokenResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return TokenResponse{}, err
	}
	if !u.IsActive {
		return TokenResponse{}, internal.ErrUserInactive
	}

	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.BusinessID)
	if err != nil {
		return TokenResponse{}, err
	}

	s.logger.Info("access token issued", "user_id", u.ID, "expires_at", expiresAt)
	return TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID, businessID string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.AccessTokenTTL)

	claims := &Claims{
		UserID:     userID,
		BusinessID: businessID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken accepts only HMAC-signed tokens from this issuer.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	if !token.Valid || claims.UserID == "" || claims.BusinessID == "" {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
