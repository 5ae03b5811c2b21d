package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Token is empty for
// Basic-authenticated requests.
type Principal struct {
	UserID string
	Token  string
}

// RevocationChecker reports whether an exact token string has been
// revoked. Checked before signature and expiry verification.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenStr string) (bool, error)
}

// BearerMiddleware guards routes behind a valid, unrevoked bearer token.
type BearerMiddleware struct {
	tokens      *TokenManager
	revocations RevocationChecker
}

// NewBearerMiddleware constructs the guard.
func NewBearerMiddleware(tokens *TokenManager, revocations RevocationChecker) *BearerMiddleware {
	return &BearerMiddleware{tokens: tokens, revocations: revocations}
}

// Handle enforces bearer authentication for protected routes.
// A missing or malformed header is a request-format error, distinct
// from the unauthorized cases below it.
func (m *BearerMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewBadRequest("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return apperrors.NewBadRequest("malformed authorization header")
	}
	tokenStr := parts[1]

	revoked, err := m.revocations.IsRevoked(c.UserContext(), tokenStr)
	if err != nil {
		return apperrors.MapError(err)
	}
	if revoked {
		return apperrors.NewUnauthorized("token revoked")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	c.Locals(principalKey, &Principal{UserID: claims.UserID, Token: tokenStr})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
