package app

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int64
		want     Pagination
	}{
		{
			name: "empty result has zero total pages",
			page: 1, pageSize: 10, total: 0,
			want: Pagination{CurrentPage: 1, TotalPages: 0, TotalNotes: 0},
		},
		{
			name: "exact fit",
			page: 1, pageSize: 10, total: 10,
			want: Pagination{CurrentPage: 1, TotalPages: 1, TotalNotes: 10},
		},
		{
			name: "partial last page rounds up",
			page: 1, pageSize: 10, total: 11,
			want: Pagination{CurrentPage: 1, TotalPages: 2, TotalNotes: 11, HasNextPage: true},
		},
		{
			name: "middle page has both neighbors",
			page: 2, pageSize: 10, total: 25,
			want: Pagination{CurrentPage: 2, TotalPages: 3, TotalNotes: 25, HasNextPage: true, HasPrevPage: true},
		},
		{
			name: "last page has only previous",
			page: 3, pageSize: 10, total: 25,
			want: Pagination{CurrentPage: 3, TotalPages: 3, TotalNotes: 25, HasPrevPage: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.pageSize, tt.total)
			if got != tt.want {
				t.Errorf("NewPagination(%d, %d, %d) = %+v, want %+v", tt.page, tt.pageSize, tt.total, got, tt.want)
			}
		})
	}
}
