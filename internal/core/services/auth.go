package services

import (
	"context"
	"time"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// apiSubject is the single operator identity the API knows about.
const apiSubject = "api"

// authService implements password-for-token authentication.
// The API has one operator password, configured at startup and stored
// only as a hash.
type authService struct {
	passwordHash string
	authAdapter  driven.AuthAdapter
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService.
// apiPassword is hashed immediately and the plaintext is discarded.
func NewAuthService(apiPassword string, authAdapter driven.AuthAdapter) (driving.AuthService, error) {
	hash, err := authAdapter.HashPassword(apiPassword)
	if err != nil {
		return nil, err
	}

	return &authService{
		passwordHash: hash,
		authAdapter:  authAdapter,
		tokenTTL:     24 * time.Hour,
	}, nil
}

// Login exchanges the API password for a signed token.
func (s *authService) Login(_ context.Context, password string) (string, error) {
	if password == "" {
		return "", domain.ErrInvalidInput
	}

	if !s.authAdapter.VerifyPassword(password, s.passwordHash) {
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := &domain.TokenClaims{
		Subject:   apiSubject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	}

	return s.authAdapter.GenerateToken(claims)
}

// ValidateToken validates a bearer token and returns its auth context.
func (s *authService) ValidateToken(_ context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if claims.Expired() {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{Subject: claims.Subject}, nil
}
