package mockserver

import (
	"fmt"
	"net/http"
	"strconv"
)

type pageParams struct {
	page  int
	limit int
}

// parsePage reads page and limit. A limit of 0 means unpaginated.
func parsePage(r *http.Request, defaultLimit int) (pageParams, error) {
	p := pageParams{page: 1, limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer")
		}
		p.page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return p, fmt.Errorf("limit must be between 1 and 100")
		}
		p.limit = n
	}
	return p, nil
}

// pageEnvelope builds {field: items, page, total_pages, total}.
func pageEnvelope[T any](field string, items []T, p pageParams) map[string]any {
	total := len(items)
	if p.limit == 0 {
		return map[string]any{field: nonNil(items)}
	}

	totalPages := (total + p.limit - 1) / p.limit
	// Pages past the end are empty; checked before multiplying so huge
	// page numbers cannot overflow.
	start, end := total, total
	if p.page <= totalPages {
		start = (p.page - 1) * p.limit
		end = min(start+p.limit, total)
	}
	return map[string]any{
		field:         nonNil(items[start:end]),
		"page":        p.page,
		"total_pages": totalPages,
		"total":       total,
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
