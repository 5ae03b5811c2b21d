package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// TokensHandler issues and revokes bearer tokens.
type TokensHandler struct {
	service *service.AuthService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(authService *service.AuthService) *TokensHandler {
	return &TokensHandler{service: authService}
}

// IssueToken POST /api/v1/tokens (Basic gated).
func (h *TokensHandler) IssueToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	token, expiresAt, err := h.service.IssueToken(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}

// RevokeToken DELETE /api/v1/tokens (Bearer gated). Revokes the exact
// token presented on this request.
func (h *TokensHandler) RevokeToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Token == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.RevokeToken(c.UserContext(), principal.UserID, principal.Token); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
