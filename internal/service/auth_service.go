package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const revokedKeyPrefix = "revoked_token:"

// AuthService issues bearer tokens and maintains the revocation set.
// Postgres is the durable denylist; Redis caches it on the hot path.
type AuthService struct {
	users      repository.UserRepository
	revoked    repository.RevokedTokenRepository
	cache      *persistence.Redis
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RevokedTokenRepo repository.RevokedTokenRepository
	Cache            *persistence.Redis
	Dispatcher       events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		revoked:    deps.RevokedTokenRepo,
		cache:      deps.Cache,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		dispatcher: deps.Dispatcher,
	}
}

// IssueToken signs a fresh token for an already-verified user. The
// Basic-credentials guard performs the secret comparison beforehand.
func (s *AuthService) IssueToken(ctx context.Context, userID string) (string, time.Time, error) {
	token, expiresAt, err := s.tokenMgr.GenerateToken(userID)
	if err != nil {
		return "", time.Time{}, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTokenIssued, userID, events.TokenPayload{
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
	return token, expiresAt, nil
}

// RevokeToken permanently invalidates the exact token string. The
// durable row has no expiry; the cache entry lives only as long as the
// token would, since signature verification rejects it afterwards.
func (s *AuthService) RevokeToken(ctx context.Context, userID, tokenStr string) error {
	row := &domain.RevokedToken{UserID: userID, Token: tokenStr}
	if err := s.revoked.Create(ctx, row); err != nil {
		return apperrors.MapError(err)
	}

	s.cacheRevocation(ctx, tokenStr)

	s.publish(ctx, events.EventTokenRevoked, userID, events.TokenPayload{UserID: userID})
	return nil
}

// IsRevoked reports whether the token string is on the denylist,
// consulting the cache first and falling back to the store.
func (s *AuthService) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	if client := s.cacheClient(); client != nil {
		n, err := client.Exists(ctx, revokedKeyPrefix+tokenStr).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		// A cache miss or error falls through to the store.
	}

	exists, err := s.revoked.Exists(ctx, tokenStr)
	if err != nil {
		return false, err
	}
	if exists {
		s.cacheRevocation(ctx, tokenStr)
	}
	return exists, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) cacheRevocation(ctx context.Context, tokenStr string) {
	client := s.cacheClient()
	if client == nil {
		return
	}
	ttl := s.tokenMgr.TTL()
	if claims, err := s.tokenMgr.ParseToken(tokenStr); err == nil && claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	_ = client.Set(ctx, revokedKeyPrefix+tokenStr, "1", ttl).Err()
}

func (s *AuthService) cacheClient() *redis.Client {
	if s.cache == nil {
		return nil
	}
	return s.cache.Client
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
