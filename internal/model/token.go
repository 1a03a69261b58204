package model

import "time"

// ResetToken is a persisted single-use password-reset grant. It is consumed
// by deletion: once the reset succeeds the row is gone and the raw token can
// never validate again.
type ResetToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t ResetToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// AccessClaims is the subset of signed claims the server itself consumes.
type AccessClaims struct {
	UserID         string `json:"sub"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Role           string `json:"role"`
	EmailConfirmed bool   `json:"email_confirmed"`
	TokenID        string `json:"jti"`
}

// AccessInfo is what Login and Refresh hand back to clients. ExpiresAt is the
// access token's signed expiry, the single source of truth for token lifetime.
type AccessInfo struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}
