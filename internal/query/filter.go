package query

// Op tags a comparison condition. Conditions render to parameterized SQL
// in the repository layer; the translator never touches data itself.
type Op string

const (
	OpEq     Op = "eq"
	OpIn     Op = "in"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
	OpIsNull Op = "isnull"
)

// Condition is a single typed filter predicate over an issue field.
// Values holds one element for scalar comparisons and one per member
// for OpIn; it is empty for OpIsNull.
type Condition struct {
	Field  string
	Op     Op
	Values []string
}

// SortKey orders results by a single field.
type SortKey struct {
	Field      string
	Descending bool
}

// Param is a decoded query parameter retained for link reconstruction.
type Param struct {
	Key   string
	Value string
}

// issueFields maps the external field names clients may filter, select
// and sort by onto their storage columns.
var issueFields = map[string]string{
	"id":          "id",
	"createdAt":   "created_at",
	"status":      "status",
	"deadline":    "deadline",
	"finishedAt":  "finished_at",
	"parentId":    "parent_id",
	"description": "description",
}

// Column resolves an external field name to its storage column.
// The second result is false for unknown fields.
func Column(field string) (string, bool) {
	col, ok := issueFields[field]
	return col, ok
}
