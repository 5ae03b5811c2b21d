package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssuesHandler manages the issue CRUD and listing endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /api/v1/issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.IssueCreateInput{
		Status:      req.Status,
		Description: req.Description,
		Deadline:    req.Deadline,
		FinishedAt:  req.FinishedAt,
		ParentID:    req.ParentID,
		CreatedAt:   req.CreatedAt,
	}
	issue, err := h.service.CreateIssue(c.UserContext(), principal.UserID, input)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderLocation, c.Path()+"/"+issue.ID)
	return c.Status(http.StatusCreated).JSON(issueResponse(issue))
}

// ListIssues GET /api/v1/issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	page, err := h.service.ListIssues(c.UserContext(), principal.UserID, c.Path(), c.Queries())
	if err != nil {
		return err
	}

	resources := make([]any, 0, len(page.Issues))
	for i := range page.Issues {
		resources = append(resources, issueResource(&page.Issues[i], page.Selected))
	}
	return c.JSON(fiber.Map{
		"meta":      page.Meta,
		"resources": resources,
	})
}

// GetIssue GET /api/v1/issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issue, err := h.service.GetIssue(c.UserContext(), principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(issueResponse(issue))
}

// UpdateIssue PUT /api/v1/issues/:id.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.IssueUpdateInput{
		Status:      req.Status,
		Description: req.Description,
		Deadline:    req.Deadline,
		FinishedAt:  req.FinishedAt,
		ParentID:    req.ParentID,
	}
	issue, err := h.service.UpdateIssue(c.UserContext(), principal.UserID, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(issueResponse(issue))
}

// DeleteIssue DELETE /api/v1/issues/:id.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteIssue(c.UserContext(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:          issue.ID,
		Status:      string(issue.Status),
		Description: issue.Description,
		Deadline:    issue.Deadline,
		FinishedAt:  issue.FinishedAt,
		ParentID:    issue.ParentID,
		CreatedAt:   issue.CreatedAt,
	}
}

// issueResource renders a list item, honoring the select projection:
// only the requested fields (plus the identifier) appear.
func issueResource(issue *domain.Issue, selected []string) any {
	if len(selected) == 0 {
		return issueResponse(issue)
	}
	resource := fiber.Map{}
	for _, field := range selected {
		switch field {
		case "id":
			resource["id"] = issue.ID
		case "createdAt":
			resource["createdAt"] = issue.CreatedAt
		case "status":
			resource["status"] = issue.Status
		case "deadline":
			resource["deadline"] = issue.Deadline
		case "finishedAt":
			resource["finishedAt"] = issue.FinishedAt
		case "parentId":
			resource["parentId"] = issue.ParentID
		case "description":
			resource["description"] = issue.Description
		}
	}
	return resource
}
