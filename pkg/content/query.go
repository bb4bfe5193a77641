package content

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filter operators understood by the content backend.
const (
	OpEq          = "$eq"
	OpEqi         = "$eqi"
	OpNe          = "$ne"
	OpGte         = "$gte"
	OpLte         = "$lte"
	OpIn          = "$in"
	OpContainsi   = "$containsi"
	OpNotNull     = "$notNull"
	populateAll   = "*"
	sortAscending = "asc"
)

type filter struct {
	path  []string
	op    string
	value any
}

// Query builds the filters/populate/sort/pagination query string used by collection endpoints.
type Query struct {
	filters  []filter
	populate []string
	sort     []string
	page     int
	pageSize int
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{}
}

// Where adds a filter on a field. Dotted fields address relations, e.g. "vendor.id".
func (q *Query) Where(field, op string, value any) *Query {
	if q == nil || strings.TrimSpace(field) == "" {
		return q
	}
	q.filters = append(q.filters, filter{path: strings.Split(field, "."), op: op, value: value})
	return q
}

// Eq is shorthand for Where(field, OpEq, value).
func (q *Query) Eq(field string, value any) *Query {
	return q.Where(field, OpEq, value)
}

// Populate requests relations to be expanded. With no fields everything is populated.
func (q *Query) Populate(fields ...string) *Query {
	if q == nil {
		return q
	}
	if len(fields) == 0 {
		q.populate = []string{populateAll}
		return q
	}
	q.populate = append(q.populate, fields...)
	return q
}

// Sort appends a sort key.
func (q *Query) Sort(field string, desc bool) *Query {
	if q == nil || field == "" {
		return q
	}
	dir := sortAscending
	if desc {
		dir = "desc"
	}
	q.sort = append(q.sort, field+":"+dir)
	return q
}

// Page sets 1-based pagination.
func (q *Query) Page(page, pageSize int) *Query {
	if q == nil {
		return q
	}
	q.page = page
	q.pageSize = pageSize
	return q
}

// Values renders the query parameters.
func (q *Query) Values() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}
	for _, f := range q.filters {
		key := "filters"
		for _, part := range f.path {
			key += "[" + part + "]"
		}
		switch f.op {
		case OpIn:
			for i, v := range toSlice(f.value) {
				values.Add(fmt.Sprintf("%s[%s][%d]", key, f.op, i), formatValue(v))
			}
		default:
			values.Add(key+"["+f.op+"]", formatValue(f.value))
		}
	}
	if len(q.populate) == 1 && q.populate[0] == populateAll {
		values.Set("populate", populateAll)
	} else {
		for i, p := range q.populate {
			values.Set(fmt.Sprintf("populate[%d]", i), p)
		}
	}
	for i, s := range q.sort {
		values.Set(fmt.Sprintf("sort[%d]", i), s)
	}
	if q.page > 0 {
		values.Set("pagination[page]", strconv.Itoa(q.page))
	}
	if q.pageSize > 0 {
		values.Set("pagination[pageSize]", strconv.Itoa(q.pageSize))
	}
	return values
}

// Encode renders the query string without a leading '?'.
func (q *Query) Encode() string {
	return q.Values().Encode()
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	default:
		return fmt.Sprint(v)
	}
}

func toSlice(v any) []any {
	switch typed := v.(type) {
	case []int:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, item)
		}
		return out
	case []string:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, item)
		}
		return out
	case []any:
		return typed
	default:
		return []any{v}
	}
}
