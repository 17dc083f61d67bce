package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// Page is one slice of a list plus the Link header pointing at its
// neighbours.
type Page[T any] struct {
	Items      []T
	Total      int
	LinkHeader string
}

// Paginate returns the page of items that follows p.Cursor. Items must be in
// a stable order; an id the cursor names that is no longer present restarts
// from the first page.
func Paginate[T any](
	items []T,
	p Params,
	cursorType string,
	id func(T) string,
	baseURL string,
	query url.Values,
) (Page[T], error) {
	cursor, err := DecodeCursor(p.Cursor, cursorType)
	if err != nil {
		return Page[T]{}, err
	}
	limit := p.PageSize()
	total := len(items)

	start := 0
	if cursor.Value != "" {
		for i, item := range items {
			if id(item) == cursor.Value {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, total)
	page := items[start:end]

	var next, prev string
	if end < total && len(page) > 0 {
		next = Cursor{Type: cursorType, Value: id(page[len(page)-1])}.Encode()
	}
	if start > 0 {
		prevValue := ""
		if start > limit {
			prevValue = id(items[start-limit-1])
		}
		prev = Cursor{Type: cursorType, Value: prevValue}.Encode()
	}

	links := newLinkSet(baseURL, query, limit)
	links.add("next", next)
	links.add("prev", prev)
	return Page[T]{
		Items:      page,
		Total:      total,
		LinkHeader: links.String(),
	}, nil
}

// linkSet renders an RFC 8288 Link header whose targets share a base URL and
// query, differing only in the cursor parameter.
type linkSet struct {
	base  string
	query url.Values
	parts []string
}

func newLinkSet(base string, query url.Values, limit int) *linkSet {
	q := make(url.Values, len(query)+1)
	for k, v := range query {
		if k != "cursor" {
			q[k] = append([]string(nil), v...)
		}
	}
	q.Set("limit", strconv.Itoa(limit))
	return &linkSet{base: base, query: q}
}

// add appends a link for rel; an empty cursor adds nothing.
func (l *linkSet) add(rel, cursor string) {
	if cursor == "" {
		return
	}
	l.query.Set("cursor", cursor)
	l.parts = append(l.parts, "<"+l.base+"?"+l.query.Encode()+`>; rel="`+rel+`"`)
	l.query.Del("cursor")
}

func (l *linkSet) String() string {
	return strings.Join(l.parts, ", ")
}
