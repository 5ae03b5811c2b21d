package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Meta is the pagination bundle returned alongside list results.
// Links are nil where no such page exists; an empty result set has
// total 0 and no links at all.
type Meta struct {
	Total int     `json:"total"`
	First *string `json:"first"`
	Prev  *string `json:"prev"`
	Curr  *string `json:"curr"`
	Next  *string `json:"next"`
	Last  *string `json:"last"`
}

// EmptyMeta is the bundle for a filter that matched nothing.
func EmptyMeta() Meta {
	return Meta{Total: 0}
}

// BuildMeta reconstructs the navigation links for a result window by
// re-serializing the retained parameters with the relevant page numbers.
func BuildMeta(path string, params []Param, pages Pages, total int) Meta {
	meta := Meta{Total: total}
	meta.First = link(path, params, pages.PerPage, pages.First)
	meta.Curr = link(path, params, pages.PerPage, pages.Current)
	meta.Last = link(path, params, pages.PerPage, pages.Last)
	if pages.Prev != nil {
		meta.Prev = link(path, params, pages.PerPage, *pages.Prev)
	}
	if pages.Next != nil {
		meta.Next = link(path, params, pages.PerPage, *pages.Next)
	}
	return meta
}

func link(path string, params []Param, perPage, page int) *string {
	l := BuildLink(path, params, perPage, page)
	return &l
}

// BuildLink serializes the retained parameters plus perPage and the
// target page into a query string. Values are escaped but commas stay
// literal, so a select list reads back as written rather than as %2C.
func BuildLink(path string, params []Param, perPage, page int) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteByte('?')
	for _, p := range params {
		b.WriteString(escape(p.Key))
		b.WriteByte('=')
		b.WriteString(escape(p.Value))
		b.WriteByte('&')
	}
	b.WriteString(paramPerPage)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(perPage))
	b.WriteByte('&')
	b.WriteString(paramPage)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(page))
	return b.String()
}

func escape(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "%2C", ",")
	escaped = strings.ReplaceAll(escaped, "%5B", "[")
	escaped = strings.ReplaceAll(escaped, "%5D", "]")
	return escaped
}
