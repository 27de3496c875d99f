package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size int
		offset     uint64
		limit      int
	}{
		{1, 20, 0, 20},
		{3, 10, 20, 10},
		{0, 10, 0, 10},
		{2, 0, 20, DefaultPageSize},
		{2, 500, 20, DefaultPageSize},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.limit, limit)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 4, 20)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.CurrentPage)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-1h", time.Minute))
}

func TestDayAndMonthStart(t *testing.T) {
	ts := time.Date(2026, 2, 17, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
}
