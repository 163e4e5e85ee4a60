package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven/mocks"
)

func TestAuthService_Login(t *testing.T) {
	adapter := mocks.NewMockAuthAdapter()
	svc, err := NewAuthService("s3cret", adapter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := svc.Login(context.Background(), "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	auth, err := svc.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.Subject != "api" {
		t.Errorf("expected subject 'api', got %q", auth.Subject)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, err := NewAuthService("s3cret", mocks.NewMockAuthAdapter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Login(context.Background(), "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.Login(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	svc, err := NewAuthService("s3cret", mocks.NewMockAuthAdapter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), ""); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for empty token, got %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), "garbage"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for unknown token, got %v", err)
	}
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	adapter := mocks.NewMockAuthAdapter()
	svc, err := NewAuthService("s3cret", adapter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expired, err := adapter.GenerateToken(&domain.TokenClaims{
		Subject:   "api",
		IssuedAt:  time.Now().Add(-48 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-24 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateToken(context.Background(), expired); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
