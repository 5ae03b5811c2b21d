package domain

import "time"

// RevokedToken records a bearer token invalidated before its natural
// expiry. A row for a given token string means that exact token is
// permanently unusable; rows are never deleted.
type RevokedToken struct {
	ID        string
	UserID    string
	Token     string
	RevokedAt time.Time
}
