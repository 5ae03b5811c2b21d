package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// Reserved parameter names handled outside the filter.
const (
	paramSelect  = "select"
	paramSort    = "sort"
	paramPerPage = "perPage"
	paramPage    = "page"
)

var comparisonOps = map[string]Op{
	"in":  OpIn,
	"lt":  OpLt,
	"lte": OpLte,
	"gt":  OpGt,
	"gte": OpGte,
}

// ListQuery is the translated form of a list request's query string:
// a typed filter, a projection, a sort order, the raw pagination inputs,
// and the parameters needed to rebuild navigation links.
type ListQuery struct {
	Conditions []Condition
	Select     []string
	Sort       []SortKey
	PerPageRaw string
	PageRaw    string
	LinkParams []Param
}

// Translate converts decoded query parameters into a ListQuery.
//
// Plain parameters become equality conditions on the named field.
// Keys of the form field[op] with op in {in, lt, lte, gt, gte} become
// range or set conditions. parentId=null and parentId= mean "parent
// absent". Unknown fields, unknown operators and unparseable values are
// caller errors.
func Translate(params map[string]string) (ListQuery, error) {
	q := ListQuery{
		PerPageRaw: params[paramPerPage],
		PageRaw:    params[paramPage],
	}

	filterKeys := make([]string, 0, len(params))
	for key := range params {
		switch key {
		case paramSelect, paramSort, paramPerPage, paramPage:
			continue
		}
		filterKeys = append(filterKeys, key)
	}
	// Map iteration order is random; links must be stable.
	sort.Strings(filterKeys)

	for _, key := range filterKeys {
		value := params[key]
		cond, err := translateCondition(key, value)
		if err != nil {
			return ListQuery{}, err
		}
		q.Conditions = append(q.Conditions, cond)
		q.LinkParams = append(q.LinkParams, Param{Key: key, Value: value})
	}

	if raw, ok := params[paramSelect]; ok && raw != "" {
		fields, err := parseSelect(raw)
		if err != nil {
			return ListQuery{}, err
		}
		q.Select = fields
		q.LinkParams = append(q.LinkParams, Param{Key: paramSelect, Value: raw})
	}

	if raw, ok := params[paramSort]; ok && raw != "" {
		keys, err := parseSort(raw)
		if err != nil {
			return ListQuery{}, err
		}
		q.Sort = keys
		q.LinkParams = append(q.LinkParams, Param{Key: paramSort, Value: raw})
	}

	return q, nil
}

func translateCondition(key, value string) (Condition, error) {
	field := key
	opName := ""
	if open := strings.IndexByte(key, '['); open >= 0 {
		if !strings.HasSuffix(key, "]") {
			return Condition{}, apperrors.NewBadRequest(fmt.Sprintf("malformed filter parameter %q", key))
		}
		field = key[:open]
		opName = key[open+1 : len(key)-1]
	}

	if _, ok := Column(field); !ok {
		return Condition{}, apperrors.NewBadRequest(fmt.Sprintf("unknown filter field %q", field))
	}

	// parentId=null and parentId= select issues without a parent.
	if field == "parentId" && opName == "" && (value == "" || value == "null") {
		return Condition{Field: field, Op: OpIsNull}, nil
	}

	if opName == "" {
		if err := validateValue(field, value); err != nil {
			return Condition{}, err
		}
		return Condition{Field: field, Op: OpEq, Values: []string{value}}, nil
	}

	op, ok := comparisonOps[opName]
	if !ok {
		return Condition{}, apperrors.NewBadRequest(fmt.Sprintf("unknown filter operator %q", opName))
	}

	if op == OpIn {
		values := strings.Split(value, ",")
		for _, v := range values {
			if err := validateValue(field, v); err != nil {
				return Condition{}, err
			}
		}
		return Condition{Field: field, Op: OpIn, Values: values}, nil
	}

	if err := validateValue(field, value); err != nil {
		return Condition{}, err
	}
	return Condition{Field: field, Op: op, Values: []string{value}}, nil
}

// validateValue rejects values the store could not compare against the
// field's column type, so malformed filters fail as 400s here instead of
// surfacing as store errors.
func validateValue(field, value string) error {
	switch field {
	case "createdAt", "deadline", "finishedAt":
		if !parseableTime(value) {
			return apperrors.NewBadRequest(fmt.Sprintf("invalid timestamp %q for field %q", value, field))
		}
	case "id", "parentId":
		if _, err := uuid.Parse(value); err != nil {
			return apperrors.NewBadRequest(fmt.Sprintf("invalid identifier %q for field %q", value, field))
		}
	}
	return nil
}

func parseableTime(value string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func parseSelect(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	fields := make([]string, 0, len(parts)+1)
	seen := map[string]bool{}
	for _, part := range parts {
		field := strings.TrimSpace(part)
		if field == "" {
			continue
		}
		if _, ok := Column(field); !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown select field %q", field))
		}
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}
	// The identifier is always part of the representation.
	if !seen["id"] {
		fields = append([]string{"id"}, fields...)
	}
	return fields, nil
}

func parseSort(raw string) ([]SortKey, error) {
	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		field := strings.TrimSpace(part)
		if field == "" {
			continue
		}
		desc := strings.HasPrefix(field, "-")
		if desc {
			field = field[1:]
		}
		if _, ok := Column(field); !ok {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown sort field %q", field))
		}
		keys = append(keys, SortKey{Field: field, Descending: desc})
	}
	return keys, nil
}
