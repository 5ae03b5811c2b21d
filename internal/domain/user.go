package domain

import "time"

// User is the domain model for account holders who own issues.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
