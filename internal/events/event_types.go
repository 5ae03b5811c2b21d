package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated EventType = "issue_created"
	EventIssueUpdated EventType = "issue_updated"
	EventIssueDeleted EventType = "issue_deleted"
	EventUserCreated  EventType = "user_created"
	EventTokenIssued  EventType = "token_issued"
	EventTokenRevoked EventType = "token_revoked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssuePayload describes the issue an event concerns.
type IssuePayload struct {
	IssueID  string             `json:"issue_id"`
	Status   domain.IssueStatus `json:"status,omitempty"`
	ParentID *string            `json:"parent_id,omitempty"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// TokenPayload payload for token lifecycle events. The token string
// itself is never included.
type TokenPayload struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
