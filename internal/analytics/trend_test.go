package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(ptrs []*float64) []any {
	out := make([]any, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			out[i] = nil
		} else {
			out[i] = *p
		}
	}
	return out
}

func TestMovingAverages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{nil, nil, 20.0, 30.0}, values(MovingAverages([]float64{10, 20, 30, 40})))
	assert.Equal(t, []any{nil, nil}, values(MovingAverages([]float64{10, 20})))
	assert.Empty(t, MovingAverages(nil))
}

func TestComparisons(t *testing.T) {
	t.Parallel()

	got := Comparisons([]float64{100, 150, 0, 30})
	require.Len(t, got, 4)

	assert.Nil(t, got[0].FromPrevious)
	assert.Nil(t, got[0].Percentage)

	assert.Equal(t, 50.0, *got[1].FromPrevious)
	assert.Equal(t, 50.0, *got[1].Percentage)

	assert.Equal(t, -150.0, *got[2].FromPrevious)
	assert.Equal(t, -100.0, *got[2].Percentage)

	// Previous total is 0, so no relative change is reported.
	assert.Equal(t, 30.0, *got[3].FromPrevious)
	assert.Equal(t, 0.0, *got[3].Percentage)
}

func TestGrowthRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		totals []float64
		want   float64
	}{
		{"first to last", []float64{100, 20, 150}, 50},
		{"decline", []float64{200, 100}, -50},
		{"single period", []float64{100}, 0},
		{"empty", nil, 0},
		{"first period is zero", []float64{0, 50, 80}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GrowthRate(tt.totals))
		})
	}
}

func TestExtremes(t *testing.T) {
	t.Parallel()

	hi, lo := Extremes([]float64{5, 9, 9, 1, 1})
	assert.Equal(t, 1, hi)
	assert.Equal(t, 3, lo)

	hi, lo = Extremes([]float64{0, 0, 0})
	assert.Equal(t, 0, hi)
	assert.Equal(t, 0, lo)

	hi, lo = Extremes(nil)
	assert.Equal(t, -1, hi)
	assert.Equal(t, -1, lo)
}

func TestDetectPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		totals []float64
		growth float64
		want   Patterns
	}{
		{
			name:   "flat spending",
			totals: []float64{100, 105, 95},
			want:   Patterns{ConsistentSpender: true},
		},
		{
			name:   "no spending at all",
			totals: []float64{0, 0, 0},
			want:   Patterns{},
		},
		{
			name:   "empty series",
			totals: nil,
			want:   Patterns{ConsistentSpender: true},
		},
		{
			name:   "spike",
			totals: []float64{10, 10, 100},
			growth: 900,
			want:   Patterns{IncreasingTrend: true, Volatile: true},
		},
		{
			name:   "moderate swings",
			totals: []float64{70, 100, 130},
			growth: 85.71,
			want:   Patterns{IncreasingTrend: true},
		},
		{
			name:   "decline",
			totals: []float64{100, 95, 85},
			growth: -15,
			want:   Patterns{ConsistentSpender: true, DecreasingTrend: true},
		},
		{
			name:   "growth exactly at threshold",
			totals: []float64{100, 110},
			growth: 10,
			want:   Patterns{ConsistentSpender: true},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectPatterns(tt.totals, Mean(tt.totals), tt.growth))
		})
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	got := Analyze([]float64{100, 120, 90, 150})

	assert.Equal(t, 4, got.Periods)
	assert.InDelta(t, 115.0, got.Average, 1e-9)
	assert.Equal(t, 3, got.Highest)
	assert.Equal(t, 2, got.Lowest)
	assert.Equal(t, 50.0, got.GrowthRate)
	assert.True(t, got.Patterns.IncreasingTrend)
	assert.Len(t, got.MovingAverages, 4)
	assert.Len(t, got.Changes, 4)

	empty := Analyze(nil)
	assert.Equal(t, 0, empty.Periods)
	assert.Equal(t, -1, empty.Highest)
	assert.Equal(t, 0.0, empty.GrowthRate)
}
