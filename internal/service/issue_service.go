package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/query"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssueService coordinates issue workflows.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
}

// IssueDependencies bundles requirements for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
}

// IssueCreateInput describes the issue creation payload.
type IssueCreateInput struct {
	Status      string
	Description string
	Deadline    *time.Time
	FinishedAt  *time.Time
	ParentID    *string
	CreatedAt   *time.Time
}

// IssueUpdateInput describes a partial update; nil fields are unchanged.
// Creation time is immutable and deliberately absent.
type IssueUpdateInput struct {
	Status      *string
	Description *string
	Deadline    *time.Time
	FinishedAt  *time.Time
	ParentID    *string
}

// IssuePage is one window of a filtered listing.
type IssuePage struct {
	Meta     query.Meta
	Issues   []domain.Issue
	Selected []string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateIssue validates and persists a new issue owned by the user.
func (s *IssueService) CreateIssue(ctx context.Context, userID string, input IssueCreateInput) (*domain.Issue, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if input.Deadline == nil {
		details["deadline"] = "required"
	}
	status := domain.IssueStatus(input.Status)
	if input.Status == "" {
		details["status"] = "required"
	} else if !status.IsValid() {
		details["status"] = fmt.Sprintf("must be one of %v", domain.IssueStatuses())
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid issue payload", details)
	}

	if err := s.checkParent(ctx, userID, input.ParentID, ""); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		UserID:      userID,
		ParentID:    input.ParentID,
		Status:      status,
		Description: input.Description,
		Deadline:    *input.Deadline,
		FinishedAt:  input.FinishedAt,
	}
	if input.CreatedAt != nil {
		issue.CreatedAt = *input.CreatedAt
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventIssueCreated, userID, events.IssuePayload{
		IssueID:  issue.ID,
		Status:   issue.Status,
		ParentID: issue.ParentID,
	})
	return issue, nil
}

// GetIssue loads an issue after id and ownership checks.
func (s *IssueService) GetIssue(ctx context.Context, userID, id string) (*domain.Issue, error) {
	return s.loadOwned(ctx, userID, id)
}

// ListIssues translates the query string, counts the matches, computes
// the result window and fetches it. Zero matches short-circuit before
// the pagination calculator, which rejects an empty total.
func (s *IssueService) ListIssues(ctx context.Context, userID, path string, params map[string]string) (*IssuePage, error) {
	q, err := query.Translate(params)
	if err != nil {
		return nil, err
	}

	filter := repository.IssueFilter{UserID: userID, Conditions: q.Conditions}
	total, err := s.issues.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if total == 0 {
		return &IssuePage{Meta: query.EmptyMeta(), Issues: []domain.Issue{}, Selected: q.Select}, nil
	}

	pages, err := query.Paginate(q.PerPageRaw, q.PageRaw, total)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	filter.Select = q.Select
	filter.Sort = q.Sort
	filter.Limit = pages.PerPage
	filter.Offset = pages.Offset()
	issues, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	return &IssuePage{
		Meta:     query.BuildMeta(path, q.LinkParams, pages, total),
		Issues:   issues,
		Selected: q.Select,
	}, nil
}

// UpdateIssue applies a partial update after id and ownership checks.
func (s *IssueService) UpdateIssue(ctx context.Context, userID, id string, input IssueUpdateInput) (*domain.Issue, error) {
	issue, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		status := domain.IssueStatus(*input.Status)
		if !status.IsValid() {
			return nil, apperrors.NewValidationError("invalid issue payload", map[string]any{
				"status": fmt.Sprintf("must be one of %v", domain.IssueStatuses()),
			})
		}
		issue.Status = status
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, apperrors.NewValidationError("invalid issue payload", map[string]any{"description": "required"})
		}
		issue.Description = *input.Description
	}
	if input.Deadline != nil {
		issue.Deadline = *input.Deadline
	}
	if input.FinishedAt != nil {
		issue.FinishedAt = input.FinishedAt
	}
	if input.ParentID != nil {
		if err := s.checkParent(ctx, userID, input.ParentID, issue.ID); err != nil {
			return nil, err
		}
		issue.ParentID = input.ParentID
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventIssueUpdated, userID, events.IssuePayload{
		IssueID:  issue.ID,
		Status:   issue.Status,
		ParentID: issue.ParentID,
	})
	return issue, nil
}

// DeleteIssue removes an issue unless other issues still reference it
// as their parent. The child check and the delete are separate store
// calls with no isolation; a child inserted in between survives with a
// dangling parent, which is accepted behavior.
func (s *IssueService) DeleteIssue(ctx context.Context, userID, id string) error {
	issue, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	children, err := s.issues.CountChildren(ctx, issue.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if children > 0 {
		return apperrors.NewValidationError(
			fmt.Sprintf("cannot delete issue: %d child issue(s) reference it", children),
			map[string]any{"childCount": children},
		)
	}

	if err := s.issues.Delete(ctx, issue.ID); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventIssueDeleted, userID, events.IssuePayload{IssueID: issue.ID})
	return nil
}

func (s *IssueService) loadOwned(ctx context.Context, userID, id string) (*domain.Issue, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewBadRequest("invalid issue id")
	}
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if issue.UserID != userID {
		return nil, apperrors.NewForbidden("issue belongs to another user")
	}
	return issue, nil
}

// checkParent validates a parent reference: well-formed, existing, owned
// by the same user and not the issue itself. A foreign-owned parent
// reports non-existent rather than leaking another user's issue ids.
func (s *IssueService) checkParent(ctx context.Context, userID string, parentID *string, selfID string) error {
	if parentID == nil {
		return nil
	}
	if _, err := uuid.Parse(*parentID); err != nil {
		return apperrors.NewValidationError("malformed parentId", map[string]any{"parentId": *parentID})
	}
	if selfID != "" && *parentID == selfID {
		return apperrors.NewValidationError("an issue cannot be its own parent", map[string]any{"parentId": *parentID})
	}
	parent, err := s.issues.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("non-existent parentId", map[string]any{"parentId": *parentID})
		}
		return apperrors.MapError(err)
	}
	if parent.UserID != userID {
		return apperrors.NewValidationError("non-existent parentId", map[string]any{"parentId": *parentID})
	}
	return nil
}

func (s *IssueService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
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
