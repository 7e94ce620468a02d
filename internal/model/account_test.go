package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountFilter_Offset(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		want  int
	}{
		{name: "first page", page: 1, limit: 10, want: 0},
		{name: "third page", page: 3, limit: 10, want: 20},
		{name: "unset page", page: 0, limit: 10, want: 0},
		{name: "unset limit", page: 5, limit: 0, want: 0},
		{name: "largest exact", page: math.MaxInt/4 + 1, limit: 4, want: math.MaxInt / 4 * 4},
		{name: "would overflow", page: 1 << 62, limit: 4, want: math.MaxInt},
		{name: "max page", page: math.MaxInt, limit: 100, want: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccountFilter{Page: tt.page, Limit: tt.limit}.Offset()
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}
