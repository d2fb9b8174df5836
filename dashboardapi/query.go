package dashboardapi

import "strings"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ListQuery selects one page of a collection, optionally narrowed by a search term.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Page is one page of a filtered collection.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Paginate filters items with match and slices out the requested page.
// Every item matches when the search term is blank.
func Paginate[T any](items []T, q ListQuery, match func(item T, term string) bool) Page[T] {
	q = q.normalized()

	filtered := items
	if q.Search != "" && match != nil {
		term := strings.ToLower(q.Search)
		filtered = make([]T, 0, len(items))
		for _, item := range items {
			if match(item, term) {
				filtered = append(filtered, item)
			}
		}
	}

	total := len(filtered)
	page := Page[T]{
		Items:      []T{},
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: (total + q.PageSize - 1) / q.PageSize,
	}

	start := (q.Page - 1) * q.PageSize
	if start >= total {
		return page
	}
	end := min(start+q.PageSize, total)
	page.Items = filtered[start:end]
	return page
}

// containsAny reports whether any field contains term, case-insensitively. term is already lower case.
func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
