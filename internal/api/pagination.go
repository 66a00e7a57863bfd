package api

import (
	"net/http"
	"strconv"
)

// List endpoints page through persons and relationships. The per_page
// cap matches the CSV export batch size, so one page never out-queries
// the export path.
const (
	DefaultPerPage = 25
	MaxPerPage     = 500
)

// Pagination is the parsed page/per_page query pair, already clamped.
type Pagination struct {
	Page    int
	PerPage int
}

// ParsePagination reads page and per_page from the query string.
// Missing, unparsable or non-positive values fall back to page 1 and
// DefaultPerPage; per_page is clamped to MaxPerPage.
func ParsePagination(r *http.Request) Pagination {
	return Pagination{
		Page:    queryInt(r, "page", 1, 0),
		PerPage: queryInt(r, "per_page", DefaultPerPage, MaxPerPage),
	}
}

// queryInt parses one positive integer query parameter. A max of 0
// means unbounded.
func queryInt(r *http.Request, name string, fallback, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// Offset converts the page number to a row offset.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages reports how many pages a result set of the given size
// spans.
func (p Pagination) TotalPages(total int64) int {
	if p.PerPage <= 0 {
		return 0
	}
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage > 0 {
		pages++
	}
	return pages
}
