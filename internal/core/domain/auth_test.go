package domain

import (
	"testing"
	"time"
)

func TestTokenClaimsExpired(t *testing.T) {
	now := time.Now().Unix()

	claims := &TokenClaims{
		Subject:   "api",
		IssuedAt:  now,
		ExpiresAt: now + 3600,
	}
	if claims.Expired() {
		t.Error("expected claims with future expiry to not be expired")
	}

	claims.ExpiresAt = now - 1
	if !claims.Expired() {
		t.Error("expected claims with past expiry to be expired")
	}
}
