package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, expiresAt, err := tm.GenerateToken("user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("another-secret", time.Hour)

	token, _, err := tm.GenerateToken("user-123")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Millisecond)

	token, _, err := tm.GenerateToken("user-123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	_, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestNewTokenManagerDefaultsTTL(t *testing.T) {
	tm := NewTokenManager(testSecret, 0)
	assert.Equal(t, time.Hour, tm.TTL())
}
