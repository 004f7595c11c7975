package services

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page     int
	PageSize int
}

// Pagination describes the page returned alongside a result set.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
}

// normalize fills defaults and rejects out-of-range values.
func (p PageRequest) normalize(op string) (PageRequest, error) {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page < 1 {
		return p, &ValidationError{Op: op, Field: "page", Reason: "must be >= 1"}
	}
	if p.Page > MaxPage {
		return p, &ValidationError{Op: op, Field: "page", Reason: "too large"}
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return p, &ValidationError{Op: op, Field: "page_size", Reason: "must be between 1 and 100"}
	}
	return p, nil
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.PageSize
}

func newPagination(p PageRequest, total int64) Pagination {
	size := int64(p.PageSize)
	return Pagination{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
	}
}
