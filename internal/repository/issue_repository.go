package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/query"
)

// allIssueFields is the default projection, in storage order.
var allIssueFields = []string{"id", "createdAt", "status", "deadline", "finishedAt", "parentId", "description"}

// IssueFilter scopes a list or count to one owner plus the translated
// query conditions. Select and Sort only affect List.
type IssueFilter struct {
	UserID     string
	Conditions []query.Condition
	Select     []string
	Sort       []query.SortKey
	Limit      int
	Offset     int
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	Count(ctx context.Context, filter IssueFilter) (int, error)
	CountChildren(ctx context.Context, parentID string) (int, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository returns a Postgres-backed implementation.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const q = `
        INSERT INTO issues (user_id, parent_id, status, description, deadline, finished_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
        RETURNING id, created_at`

	var createdAt any
	if !issue.CreatedAt.IsZero() {
		createdAt = issue.CreatedAt
	}
	return r.pool.QueryRow(ctx, q,
		issue.UserID,
		issue.ParentID,
		issue.Status,
		issue.Description,
		issue.Deadline,
		issue.FinishedAt,
		createdAt,
	).Scan(&issue.ID, &issue.CreatedAt)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const q = `
        UPDATE issues SET parent_id=$1, status=$2, description=$3, deadline=$4, finished_at=$5
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, q,
		issue.ParentID,
		issue.Status,
		issue.Description,
		issue.Deadline,
		issue.FinishedAt,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const q = `
        SELECT id, user_id, parent_id, status, description, deadline, finished_at, created_at
        FROM issues WHERE id=$1`

	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&issue.ID,
		&issue.UserID,
		&issue.ParentID,
		&issue.Status,
		&issue.Description,
		&issue.Deadline,
		&issue.FinishedAt,
		&issue.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	fields := filter.Select
	if len(fields) == 0 {
		fields = allIssueFields
	}
	columns := make([]string, len(fields))
	for i, field := range fields {
		col, ok := query.Column(field)
		if !ok {
			return nil, fmt.Errorf("unknown issue field %q", field)
		}
		columns[i] = col
	}

	where, args := renderConditions(filter.UserID, filter.Conditions)
	sql := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY %s`,
		strings.Join(columns, ", "), where, renderSort(filter.Sort))
	if filter.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		dest := make([]any, len(columns))
		for i, col := range columns {
			dest[i] = issueColumnPtr(&issue, col)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func (r *issueRepository) Count(ctx context.Context, filter IssueFilter) (int, error) {
	where, args := renderConditions(filter.UserID, filter.Conditions)
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM issues WHERE %s`, where)

	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *issueRepository) CountChildren(ctx context.Context, parentID string) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE parent_id=$1`, parentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// renderConditions serializes the owner scope plus the translated filter
// into a WHERE clause with numbered placeholders.
func renderConditions(userID string, conds []query.Condition) (string, []any) {
	args := []any{userID}
	clauses := []string{"user_id=$1"}

	for _, cond := range conds {
		col, ok := query.Column(cond.Field)
		if !ok {
			continue
		}
		switch cond.Op {
		case query.OpIsNull:
			clauses = append(clauses, fmt.Sprintf("%s IS NULL", col))
		case query.OpIn:
			placeholders := make([]string, len(cond.Values))
			for i, v := range cond.Values {
				args = append(args, v)
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ",")))
		default:
			args = append(args, cond.Values[0])
			clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, sqlComparator(cond.Op), len(args)))
		}
	}
	return strings.Join(clauses, " AND "), args
}

func sqlComparator(op query.Op) string {
	switch op {
	case query.OpLt:
		return "<"
	case query.OpLte:
		return "<="
	case query.OpGt:
		return ">"
	case query.OpGte:
		return ">="
	default:
		return "="
	}
}

// renderSort applies sort keys left to right; without any, insertion
// order (creation time) keeps list windows deterministic.
func renderSort(keys []query.SortKey) string {
	if len(keys) == 0 {
		return "created_at ASC"
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		col, ok := query.Column(key.Field)
		if !ok {
			continue
		}
		direction := "ASC"
		if key.Descending {
			direction = "DESC"
		}
		parts = append(parts, col+" "+direction)
	}
	if len(parts) == 0 {
		return "created_at ASC"
	}
	return strings.Join(parts, ", ")
}

func issueColumnPtr(issue *domain.Issue, column string) any {
	switch column {
	case "id":
		return &issue.ID
	case "user_id":
		return &issue.UserID
	case "parent_id":
		return &issue.ParentID
	case "status":
		return &issue.Status
	case "description":
		return &issue.Description
	case "deadline":
		return &issue.Deadline
	case "finished_at":
		return &issue.FinishedAt
	case "created_at":
		return &issue.CreatedAt
	default:
		return new(any)
	}
}
