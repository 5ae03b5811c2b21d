package query

import (
	"errors"
	"strconv"
)

const (
	// DefaultPerPage applies when perPage is absent or non-numeric.
	DefaultPerPage = 100
	// MaxPerPage caps the page size regardless of the request.
	MaxPerPage = 100
)

// ErrNonPositiveTotal rejects pagination over an empty match set.
// Callers must short-circuit the zero-result branch before paginating.
var ErrNonPositiveTotal = errors.New("pagination requires a positive total")

// Pages describes the normalized result window for a list request.
// Prev and Next are nil at the first and last page respectively.
type Pages struct {
	PerPage int
	First   int
	Prev    *int
	Current int
	Next    *int
	Last    int
}

// Offset returns the number of rows to skip for the current page.
func (p Pages) Offset() int {
	return (p.Current - 1) * p.PerPage
}

// Paginate normalizes the requested page size and index against the
// total number of matches.
func Paginate(perPageRaw, pageRaw string, total int) (Pages, error) {
	if total <= 0 {
		return Pages{}, ErrNonPositiveTotal
	}

	perPage, err := strconv.Atoi(perPageRaw)
	if err != nil || perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	last := (total + perPage - 1) / perPage

	current, err := strconv.Atoi(pageRaw)
	if err != nil || current <= 0 {
		current = 1
	}
	if current > last {
		current = last
	}

	pages := Pages{
		PerPage: perPage,
		First:   1,
		Current: current,
		Last:    last,
	}
	if current > 1 {
		prev := current - 1
		pages.Prev = &prev
	}
	if current < last {
		next := current + 1
		pages.Next = &next
	}
	return pages, nil
}
