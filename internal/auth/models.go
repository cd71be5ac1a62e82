package auth

import "time"

// User is the persisted account record. PasswordHash round-trips through the
// users snapshot; it is stripped from every copy handed out of this package.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Nickname     string    `json:"nickname"`
	CreatedAt    time.Time `json:"created_at"`
	Avatar       string    `json:"avatar,omitempty"`
}

// Token is an opaque bearer credential. Tokens live only in process memory;
// a restart invalidates every session.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type tokenEntry struct {
	UserID    string
	ExpiresAt time.Time
}
