package analytics

import "math"

// Pattern thresholds over relative deviation from the mean and growth rate.
const (
	ConsistentDeviation = 0.20
	VolatileDeviation   = 0.50
	TrendGrowthPercent  = 10.0
	MovingAverageWindow = 3
)

// Change is the difference between a period and the one before it.
// Both fields are nil for the first period.
type Change struct {
	FromPrevious *float64 `json:"changeFromPrevious"`
	Percentage   *float64 `json:"changePercentage"`
}

// Patterns are independent spending labels; more than one may hold.
type Patterns struct {
	ConsistentSpender bool `json:"consistentSpender"`
	IncreasingTrend   bool `json:"increasingTrend"`
	DecreasingTrend   bool `json:"decreasingTrend"`
	Volatile          bool `json:"volatile"`
}

// Trend summarizes an ordered series of period totals.
type Trend struct {
	Periods        int
	Average        float64
	Highest        int // index, -1 for an empty series
	Lowest         int // index, -1 for an empty series
	GrowthRate     float64
	Patterns       Patterns
	MovingAverages []*float64
	Changes        []Change
}

// Analyze derives every trend figure from totals in ascending time order.
func Analyze(totals []float64) Trend {
	highest, lowest := Extremes(totals)
	avg := Mean(totals)
	growth := GrowthRate(totals)
	return Trend{
		Periods:        len(totals),
		Average:        avg,
		Highest:        highest,
		Lowest:         lowest,
		GrowthRate:     growth,
		Patterns:       DetectPatterns(totals, avg, growth),
		MovingAverages: MovingAverages(totals),
		Changes:        Comparisons(totals),
	}
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	return sum / float64(len(totals))
}

// MovingAverages returns the trailing 3-point mean at every index; the first
// two entries are nil.
func MovingAverages(totals []float64) []*float64 {
	out := make([]*float64, len(totals))
	for i := MovingAverageWindow - 1; i < len(totals); i++ {
		var sum float64
		for _, t := range totals[i-MovingAverageWindow+1 : i+1] {
			sum += t
		}
		avg := sum / MovingAverageWindow
		out[i] = &avg
	}
	return out
}

// Comparisons returns the absolute and relative change from the previous period.
// The relative change is 0 when the previous total is not positive.
func Comparisons(totals []float64) []Change {
	out := make([]Change, len(totals))
	for i := 1; i < len(totals); i++ {
		diff := totals[i] - totals[i-1]
		pct := 0.0
		if totals[i-1] > 0 {
			pct = diff / totals[i-1] * 100
		}
		out[i] = Change{FromPrevious: &diff, Percentage: &pct}
	}
	return out
}

// GrowthRate compares the last total to the first, in percent.
// It is 0 for fewer than two periods and when the first total is 0.
func GrowthRate(totals []float64) float64 {
	if len(totals) < 2 {
		return 0
	}
	first, last := totals[0], totals[len(totals)-1]
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// Extremes returns the indexes of the highest and lowest totals.
// Ties resolve to the earliest index.
func Extremes(totals []float64) (highest, lowest int) {
	if len(totals) == 0 {
		return -1, -1
	}
	for i := 1; i < len(totals); i++ {
		if totals[i] > totals[highest] {
			highest = i
		}
		if totals[i] < totals[lowest] {
			lowest = i
		}
	}
	return highest, lowest
}

// DetectPatterns labels the series from each total's relative deviation from
// average and from the growth rate. With a zero average the deviations are
// undefined, so a non-empty series is neither consistent nor volatile.
func DetectPatterns(totals []float64, average, growth float64) Patterns {
	p := Patterns{
		ConsistentSpender: true,
		IncreasingTrend:   growth > TrendGrowthPercent,
		DecreasingTrend:   growth < -TrendGrowthPercent,
	}
	for _, t := range totals {
		// NaN when average is 0; it fails both comparisons.
		dev := math.Abs(t-average) / average
		if !(dev < ConsistentDeviation) {
			p.ConsistentSpender = false
		}
		if dev > VolatileDeviation {
			p.Volatile = true
		}
	}
	return p
}
