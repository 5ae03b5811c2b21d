package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/issue-tracker/internal/query"
)

func TestRenderConditionsOwnerOnly(t *testing.T) {
	where, args := renderConditions("user-1", nil)

	assert.Equal(t, "user_id=$1", where)
	assert.Equal(t, []any{"user-1"}, args)
}

func TestRenderConditionsComparisons(t *testing.T) {
	where, args := renderConditions("user-1", []query.Condition{
		{Field: "deadline", Op: query.OpGte, Values: []string{"2024-01-01"}},
		{Field: "deadline", Op: query.OpLt, Values: []string{"2024-02-01"}},
	})

	assert.Equal(t, "user_id=$1 AND deadline >= $2 AND deadline < $3", where)
	assert.Equal(t, []any{"user-1", "2024-01-01", "2024-02-01"}, args)
}

func TestRenderConditionsInList(t *testing.T) {
	where, args := renderConditions("user-1", []query.Condition{
		{Field: "status", Op: query.OpIn, Values: []string{"backlog", "selected"}},
	})

	assert.Equal(t, "user_id=$1 AND status IN ($2,$3)", where)
	assert.Equal(t, []any{"user-1", "backlog", "selected"}, args)
}

func TestRenderConditionsIsNull(t *testing.T) {
	where, args := renderConditions("user-1", []query.Condition{
		{Field: "parentId", Op: query.OpIsNull},
	})

	assert.Equal(t, "user_id=$1 AND parent_id IS NULL", where)
	assert.Equal(t, []any{"user-1"}, args)
}

func TestRenderConditionsEquality(t *testing.T) {
	where, args := renderConditions("user-1", []query.Condition{
		{Field: "status", Op: query.OpEq, Values: []string{"done"}},
	})

	assert.Equal(t, "user_id=$1 AND status = $2", where)
	assert.Equal(t, []any{"user-1", "done"}, args)
}

func TestRenderSortDefault(t *testing.T) {
	assert.Equal(t, "created_at ASC", renderSort(nil))
}

func TestRenderSortKeys(t *testing.T) {
	sort := renderSort([]query.SortKey{
		{Field: "deadline", Descending: true},
		{Field: "createdAt"},
	})
	assert.Equal(t, "deadline DESC, created_at ASC", sort)
}
