package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		from, lim  int
	}{
		{name: "first page", page: 1, size: 10, from: 0, lim: 10},
		{name: "third page", page: 3, size: 20, from: 40, lim: 20},
		{name: "zero page", page: 0, size: 5, from: 0, lim: 5},
		{name: "default size", page: 2, size: 0, from: 10, lim: 10},
		{name: "capped size", page: 1, size: 1000, from: 0, lim: 100},
		{name: "huge page", page: math.MaxInt, size: 100, from: (MaxPage - 1) * 100, lim: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.lim, lim)
		})
	}
}

func TestCalculate_OffsetNeverNegative(t *testing.T) {
	for _, page := range []int{MaxPage, MaxPage + 1, math.MaxInt} {
		for _, size := range []int{0, 1, DefaultPageSize, MaxPageSize, math.MaxInt} {
			from, _ := Calculate(page, size)
			assert.GreaterOrEqual(t, from, 0, "page=%d size=%d", page, size)
		}
	}
}
