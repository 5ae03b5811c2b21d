package dto

import "time"

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Status      string     `json:"status"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	FinishedAt  *time.Time `json:"finishedAt"`
	ParentID    *string    `json:"parentId"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// UpdateIssueRequest payload; absent fields stay unchanged.
type UpdateIssueRequest struct {
	Status      *string    `json:"status"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	FinishedAt  *time.Time `json:"finishedAt"`
	ParentID    *string    `json:"parentId"`
}

// IssueResponse is the full issue representation.
type IssueResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	ParentID    *string    `json:"parentId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
