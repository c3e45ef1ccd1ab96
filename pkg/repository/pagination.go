package repository

import (
	"fmt"
	"math"
)

// MaxPageSize is the largest page a caller may request.
const MaxPageSize = 1000

// Page is a validated (pageNumber, pageSize) pair. Page numbers are 1-based.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// NewPage validates the paging arguments.
func NewPage(pageNumber, pageSize int) (Page, error) {
	if pageNumber < 1 {
		return Page{}, &ArgumentError{Param: "pageNumber", Reason: "must be at least 1"}
	}
	if pageSize < 1 {
		return Page{}, &ArgumentError{Param: "pageSize", Reason: "must be at least 1"}
	}
	if pageSize > MaxPageSize {
		return Page{}, &ArgumentError{Param: "pageSize", Reason: fmt.Sprintf("exceeds maximum allowed value of %d", MaxPageSize)}
	}
	if pageNumber-1 > math.MaxInt/pageSize {
		return Page{}, &ArgumentError{Param: "pageNumber", Reason: "offset out of range"}
	}
	return Page{Number: pageNumber, Size: pageSize}, nil
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return p.Size * (p.Number - 1)
}

// Limit returns the number of rows to return.
func (p Page) Limit() int {
	return p.Size
}

// PaginationResult represents the result of a paginated query
type PaginationResult[T any] struct {
	Items      []T   `json:"items"`       // The actual data
	Total      int64 `json:"total"`       // Total number of records
	Page       int   `json:"page"`        // Current page number
	PageSize   int   `json:"page_size"`   // Page size
	TotalPages int   `json:"total_pages"` // Total number of pages
	HasMore    bool  `json:"has_more"`    // Whether there are more pages
}

// NewPaginationResult joins one page of items with an independently counted total.
// The two may disagree under concurrent writes; nothing here reconciles them.
func NewPaginationResult[T any](items []T, total int64, page Page) *PaginationResult[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if page.Size > 0 {
		totalPages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}

	return &PaginationResult[T]{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages,
		HasMore:    page.Number < totalPages,
	}
}
