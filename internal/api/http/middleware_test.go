package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
)

type staticRevocations map[string]bool

func (s staticRevocations) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	return s[tokenStr], nil
}

type stubIssueRepo struct {
	getByIDFunc       func(ctx context.Context, id string) (*domain.Issue, error)
	deleteFunc        func(ctx context.Context, id string) error
	countChildrenFunc func(ctx context.Context, parentID string) (int, error)
}

func (s *stubIssueRepo) Create(ctx context.Context, issue *domain.Issue) error {
	return errors.New("not implemented")
}

func (s *stubIssueRepo) Update(ctx context.Context, issue *domain.Issue) error {
	return errors.New("not implemented")
}

func (s *stubIssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubIssueRepo) Delete(ctx context.Context, id string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (s *stubIssueRepo) List(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	return nil, errors.New("not implemented")
}

func (s *stubIssueRepo) Count(ctx context.Context, filter repository.IssueFilter) (int, error) {
	return 0, errors.New("not implemented")
}

func (s *stubIssueRepo) CountChildren(ctx context.Context, parentID string) (int, error) {
	if s.countChildrenFunc != nil {
		return s.countChildrenFunc(ctx, parentID)
	}
	return 0, errors.New("not implemented")
}

func newTestApp(repo *stubIssueRepo, revoked staticRevocations) (*fiber.App, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	bearer := auth.NewBearerMiddleware(tokens, revoked)
	issuesHandler := handlers.NewIssuesHandler(
		service.NewIssueService(service.IssueDependencies{IssueRepo: repo}),
	)

	app := fiber.New()
	app.Use(errorHandlingMiddleware(zap.NewNop(), nil))
	issues := app.Group("/api/v1/issues", bearer.Handle)
	issues.Get("/:id", issuesHandler.GetIssue)
	issues.Delete("/:id", issuesHandler.DeleteIssue)
	return app, tokens
}

func decodeErrorEnvelope(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	var body struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotNil(t, body.Error)
	return body.Error
}

func TestBearerGuardMissingHeader(t *testing.T) {
	app, _ := newTestApp(&stubIssueRepo{}, staticRevocations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/"+uuid.NewString(), nil)
	res, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	envelope := decodeErrorEnvelope(t, res)
	assert.Equal(t, "INVALID_REQUEST", envelope["code"])
}

func TestBearerGuardMalformedHeader(t *testing.T) {
	app, _ := newTestApp(&stubIssueRepo{}, staticRevocations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/"+uuid.NewString(), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Token abc123")
	res, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestBearerGuardRevokedToken(t *testing.T) {
	revoked := staticRevocations{}
	app, tokens := newTestApp(&stubIssueRepo{}, revoked)

	token, _, err := tokens.GenerateToken(uuid.NewString())
	require.NoError(t, err)
	revoked[token] = true

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/"+uuid.NewString(), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	envelope := decodeErrorEnvelope(t, res)
	assert.Equal(t, "token revoked", envelope["message"])
}

func TestBearerGuardInvalidToken(t *testing.T) {
	app, _ := newTestApp(&stubIssueRepo{}, staticRevocations{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/"+uuid.NewString(), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not.a.token")
	res, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGetIssueThroughGuard(t *testing.T) {
	userID := uuid.NewString()
	issueID := uuid.NewString()
	repo := &stubIssueRepo{
		getByIDFunc: func(ctx context.Context, id string) (*domain.Issue, error) {
			return &domain.Issue{
				ID:          issueID,
				UserID:      userID,
				Status:      domain.IssueStatusDone,
				Description: "wrapped up",
				Deadline:    time.Now(),
				CreatedAt:   time.Now(),
			}, nil
		},
	}
	app, tokens := newTestApp(repo, staticRevocations{})

	token, _, err := tokens.GenerateToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/"+issueID, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, issueID, body["id"])
	assert.Equal(t, "done", body["status"])
}

func TestDeleteIssueWithChildrenEnvelope(t *testing.T) {
	userID := uuid.NewString()
	issueID := uuid.NewString()
	repo := &stubIssueRepo{
		getByIDFunc: func(ctx context.Context, id string) (*domain.Issue, error) {
			return &domain.Issue{ID: issueID, UserID: userID}, nil
		},
		countChildrenFunc: func(ctx context.Context, parentID string) (int, error) {
			return 2, nil
		},
	}
	app, tokens := newTestApp(repo, staticRevocations{})

	token, _, err := tokens.GenerateToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/issues/"+issueID, nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	envelope := decodeErrorEnvelope(t, res)
	assert.Equal(t, "VALIDATION_FAILED", envelope["code"])
	assert.Contains(t, envelope["message"], "2 child issue(s)")
	details, ok := envelope["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), details["childCount"])
}
