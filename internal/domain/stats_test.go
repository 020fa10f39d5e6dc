package domain

import (
	"testing"
)

func TestPoolStats_CheckedOut(t *testing.T) {
	tests := []struct {
		name  string
		stats *PoolStats
		want  int
	}{
		{
			name:  "all available means none checked out",
			stats: &PoolStats{Total: 5, Available: 5},
			want:  0,
		},
		{
			name:  "difference is checked out",
			stats: &PoolStats{Total: 5, Available: 2},
			want:  3,
		},
		{
			name:  "empty pool",
			stats: &PoolStats{},
			want:  0,
		},
		{
			name:  "never negative",
			stats: &PoolStats{Total: 1, Available: 2},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.CheckedOut(); got != tt.want {
				t.Errorf("CheckedOut() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPoolStats_Headroom(t *testing.T) {
	tests := []struct {
		name  string
		stats *PoolStats
		want  int
	}{
		{
			name:  "empty pool has full headroom",
			stats: &PoolStats{Total: 0, Capacity: 10},
			want:  10,
		},
		{
			name:  "partial",
			stats: &PoolStats{Total: 7, Capacity: 10},
			want:  3,
		},
		{
			name:  "full pool has none",
			stats: &PoolStats{Total: 10, Capacity: 10},
			want:  0,
		},
		{
			name:  "over capacity clamps to zero",
			stats: &PoolStats{Total: 11, Capacity: 10},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Headroom(); got != tt.want {
				t.Errorf("Headroom() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPoolStats_Quiescent(t *testing.T) {
	tests := []struct {
		name  string
		stats *PoolStats
		want  bool
	}{
		{
			name:  "empty pool is quiescent",
			stats: &PoolStats{},
			want:  true,
		},
		{
			name:  "all resources idle",
			stats: &PoolStats{Total: 3, Available: 3},
			want:  true,
		},
		{
			name:  "checked out resource blocks quiescence",
			stats: &PoolStats{Total: 3, Available: 2},
			want:  false,
		},
		{
			name:  "pending request blocks quiescence",
			stats: &PoolStats{Total: 3, Available: 3, Pending: 1},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Quiescent(); got != tt.want {
				t.Errorf("Quiescent() = %v, want %v", got, tt.want)
			}
		})
	}
}
