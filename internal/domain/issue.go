package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusBacklog    IssueStatus = "backlog"
	IssueStatusSelected   IssueStatus = "selected"
	IssueStatusInProgress IssueStatus = "in-progress"
	IssueStatusDone       IssueStatus = "done"
	IssueStatusWillNotDo  IssueStatus = "will-not-do"
)

// IssueStatuses lists every valid status value.
func IssueStatuses() []IssueStatus {
	return []IssueStatus{
		IssueStatusBacklog,
		IssueStatusSelected,
		IssueStatusInProgress,
		IssueStatusDone,
		IssueStatusWillNotDo,
	}
}

// IsValid reports whether the status belongs to the enumeration.
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusBacklog, IssueStatusSelected, IssueStatusInProgress,
		IssueStatusDone, IssueStatusWillNotDo:
		return true
	}
	return false
}

// Issue is the tracked unit of work. An issue whose ParentID points at
// another issue is a sub-issue; the parent is informally an epic.
type Issue struct {
	ID          string
	UserID      string
	ParentID    *string
	Status      IssueStatus
	Description string
	Deadline    time.Time
	FinishedAt  *time.Time
	CreatedAt   time.Time
}
