package mocks

import (
	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// MockAuthAdapter is a mock implementation of AuthAdapter for testing.
// Hashes are reversible and tokens are opaque handles into an in-memory map.
type MockAuthAdapter struct {
	tokens map[string]*domain.TokenClaims

	// GenerateErr is returned from GenerateToken when set
	GenerateErr error
}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{tokens: make(map[string]*domain.TokenClaims)}
}

func (m *MockAuthAdapter) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (m *MockAuthAdapter) VerifyPassword(password, hash string) bool {
	return hash == "hashed:"+password
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	token := domain.GenerateID()
	stored := *claims
	m.tokens[token] = &stored
	return token, nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	claims, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
