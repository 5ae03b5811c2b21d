package auth

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// BasicMiddleware guards routes behind Basic credentials verified
// against the stored user record.
type BasicMiddleware struct {
	users repository.UserRepository
}

// NewBasicMiddleware constructs the guard.
func NewBasicMiddleware(users repository.UserRepository) *BasicMiddleware {
	return &BasicMiddleware{users: users}
}

// Handle verifies Basic credentials and loads the principal.
func (m *BasicMiddleware) Handle(c *fiber.Ctx) error {
	username, password, err := parseBasicHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return apperrors.NewBadRequest(err.Error())
	}

	user, err := m.users.GetByUsername(c.UserContext(), username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.MapError(err)
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	c.Locals(principalKey, &Principal{UserID: user.ID})
	return c.Next()
}

func parseBasicHeader(header string) (string, string, error) {
	if header == "" {
		return "", "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
		return "", "", errors.New("malformed authorization header")
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", errors.New("malformed basic credentials")
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found || username == "" {
		return "", "", errors.New("malformed basic credentials")
	}
	return username, password, nil
}
