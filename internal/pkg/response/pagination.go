package response

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination is a page/limit window taken from query parameters
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PaginationFromRequest reads page and limit, ignoring malformed values
func PaginationFromRequest(r *http.Request) Pagination {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	limit := DefaultLimit
	if l := query.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= MaxLimit {
			limit = v
		}
	}
	return Pagination{Page: page, Limit: limit}
}
