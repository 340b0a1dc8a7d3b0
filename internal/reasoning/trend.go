package reasoning

// Trend classifications.
const (
	TrendUp               = "up"
	TrendDown             = "down"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// trendBandPct is the fixed noise-tolerance threshold: short-window mean
// must move more than this percentage against the preceding window to
// classify as up or down. Not user-configurable.
const trendBandPct = 10.0

// TrendResult is the outcome of a moving-average trend classification.
type TrendResult struct {
	Class         string
	PercentChange float64 // meaningless when Class is insufficient_data
}

// Trend compares the mean of the last window points of series against
// the mean of the preceding window points. Fewer than 2*window points
// (or a non-positive window) classifies as insufficient_data.
func Trend(series []float64, window int) TrendResult {
	if window <= 0 || len(series) < 2*window {
		return TrendResult{Class: TrendInsufficientData}
	}

	recent := mean(series[len(series)-window:])
	previous := mean(series[len(series)-2*window : len(series)-window])

	var pct float64
	switch {
	case previous != 0:
		pct = (recent - previous) / previous * 100
	case recent > 0:
		pct = trendBandPct + 1 // from zero to positive counts as up
	case recent < 0:
		pct = -(trendBandPct + 1)
	}

	class := TrendStable
	switch {
	case pct > trendBandPct:
		class = TrendUp
	case pct < -trendBandPct:
		class = TrendDown
	}
	return TrendResult{Class: class, PercentChange: pct}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
