package helpers

import (
	"net/http"
	"strconv"

	"eventrsvp/internal/domain"
)

// Page defaults and limits for the upcoming-events listing.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ParsePagination reads page and page_size from the query string. Missing or non-positive values fall
// back to the defaults and page_size is capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     positiveInt(q.Get("page"), DefaultPage),
		PageSize: min(positiveInt(q.Get("page_size"), DefaultPageSize), MaxPageSize),
	}
}

func positiveInt(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil && v >= 1 {
		return v
	}
	return fallback
}

// PaginationMeta describes one page of the upcoming-events listing.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPaginationMeta computes TotalPages as ceiling(total / pageSize), or 0 when pageSize is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
