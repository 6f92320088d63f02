package domain

import "time"

// User is created once at registration and never updated afterwards.
type User struct {
	Username     string    `json:"username"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenClaims is the verified content of a bearer token. Tokens are
// stateless: nothing here is persisted server-side.
type TokenClaims struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
