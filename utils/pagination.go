package utils

import (
	"math"
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage bounds the page query value so offsets stay far from overflow.
	MaxPage = 1_000_000
)

// Page is one page of a filtered list.
type Page[T any] struct {
	Rows       []T `json:"rows"`
	Count      int `json:"count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// Paginate keeps the items matching keep (nil keeps all) and returns the
// requested page. Pages are 1-based; out-of-range pages come back empty.
func Paginate[T any](items []T, page, limit int, keep func(T) bool) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	filtered := items
	if keep != nil {
		filtered = make([]T, 0, len(items))
		for _, it := range items {
			if keep(it) {
				filtered = append(filtered, it)
			}
		}
	}

	total := len(filtered)
	out := Page[T]{
		Rows:       []T{},
		Count:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	start := Offset(page, limit)
	if start >= total {
		return out
	}
	end := min(start+limit, total)
	out.Rows = append(out.Rows, filtered[start:end]...)
	return out
}

// PageParams reads page and limit query values, tolerating garbage.
func PageParams(pageStr, limitStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page > MaxPage {
		page = MaxPage
	}
	return page, limit
}

// Offset is the number of rows before a 1-based page. It saturates at
// math.MaxInt instead of wrapping, so a huge page is simply past the end.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// PageOf wraps rows that were already paged by the store.
func PageOf[T any](rows []T, total int64, page, limit int) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return Page[T]{
		Rows:       rows,
		Count:      int(total),
		Page:       page,
		Limit:      limit,
		TotalPages: (int(total) + limit - 1) / limit,
	}
}
