package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/placement/internal/app/models/dto"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(37, 2, 10)
	assert.Equal(t, dto.PaginationInfo{CurrentPage: 2, TotalPages: 4, PageSize: 10, TotalItems: 37}, info)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, int64(0), empty.TotalItems)
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(2, 10, 15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = CalculateSliceIndices(5, 10, 15)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, end)

	start, end = CalculateSliceIndices(1, 500, 15)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(dto.PageRequest{})
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\% off\_%`, LikePattern(" 50% off_ "))
	assert.Nil(t, NilIfEmpty("  "))
	assert.Equal(t, "x", *NilIfEmpty(" x "))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Hour, ParseDuration("1h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), DateOnly(time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)))
}
