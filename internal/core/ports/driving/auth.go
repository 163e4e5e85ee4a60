package driving

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// AuthService authenticates API callers.
type AuthService interface {
	// Login exchanges the API password for a signed token.
	Login(ctx context.Context, password string) (string, error)

	// ValidateToken validates a bearer token and returns its auth context.
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
