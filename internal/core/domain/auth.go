package domain

import "time"

// TokenClaims are the claims carried in an API token.
// The API has a single operator identity authenticated by password.
type TokenClaims struct {
	Subject   string `json:"subject"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired reports whether the claims are past their expiry.
func (c *TokenClaims) Expired() bool {
	return time.Now().Unix() >= c.ExpiresAt
}

// AuthContext is attached to authenticated requests.
type AuthContext struct {
	Subject string `json:"subject"`
}
