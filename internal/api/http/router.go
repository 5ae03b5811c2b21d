package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Issues *handlers.IssuesHandler
	Users  *handlers.UsersHandler
	Tokens *handlers.TokensHandler
	Basic  *auth.BasicMiddleware
	Bearer *auth.BearerMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/users", cfg.Users.CreateUser)
	api.Get("/users/:id", cfg.Basic.Handle, cfg.Users.GetUser)
	api.Put("/users/:id", cfg.Basic.Handle, cfg.Users.UpdateUser)

	api.Post("/tokens", cfg.Basic.Handle, cfg.Tokens.IssueToken)
	api.Delete("/tokens", cfg.Bearer.Handle, cfg.Tokens.RevokeToken)

	issues := api.Group("/issues", cfg.Bearer.Handle)
	issues.Post("/", cfg.Issues.CreateIssue)
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Put("/:id", cfg.Issues.UpdateIssue)
	issues.Delete("/:id", cfg.Issues.DeleteIssue)
}
