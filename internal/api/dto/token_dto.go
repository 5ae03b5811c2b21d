package dto

import "time"

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
