package response_test

import (
	"testing"

	"masar-finance/internal/shared/response"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []int
		pages    int
	}{
		{name: "first page", page: 1, pageSize: 2, want: []int{1, 2}, pages: 3},
		{name: "last partial page", page: 3, pageSize: 2, want: []int{5}, pages: 3},
		{name: "past the end", page: 9, pageSize: 2, want: []int{}, pages: 3},
		{name: "defaults", page: 0, pageSize: 0, want: []int{1, 2, 3, 4, 5}, pages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, meta := response.Paginate(items, tt.page, tt.pageSize)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(5), meta.Total)
			assert.Equal(t, tt.pages, meta.TotalPages)
		})
	}
}
