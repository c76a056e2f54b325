package helpers

import (
	"github.com/yigit/placement/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// clamp replaces out of range values with the defaults.
func clamp(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// NormalizePage applies the paging defaults to a bound query.
func NormalizePage(req dto.PageRequest) (page, size int) {
	return clamp(req.Page, req.Size)
}

// CalculateOffsetLimit converts a 1-based page into SQL offset and limit.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	page, limit = clamp(page, size)
	return uint64((page - 1) * limit), limit
}

// NewPaginationInfo builds the pagination block of a list response.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = clamp(page, size)

	var totalPages int
	if totalItems > 0 {
		totalPages = int((totalItems + int64(size) - 1) / int64(size))
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// Paginate wraps items and their pagination metadata.
func Paginate(items interface{}, totalItems int64, page, size int) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: NewPaginationInfo(totalItems, page, size),
	}
}

// CalculateSliceIndices returns the bounds of a page within a slice of
// totalItems elements. Pages past the end yield an empty range.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	page, size = clamp(page, size)
	start = min((page-1)*size, totalItems)
	end = min(start+size, totalItems)
	return start, end
}
