package reasoning

import "math"

// minCorrelationPoints is the floor below which a Pearson coefficient is
// numerically unstable and therefore not computed.
const minCorrelationPoints = 5

// strongCorrelationBar classifies |r| above it as strong in either direction.
const strongCorrelationBar = 0.7

// CorrelationResult is the outcome of a lagged correlation between two
// equal-length metric series.
type CorrelationResult struct {
	// OK is false when the series are too short (or of unequal length)
	// to produce a stable coefficient.
	OK          bool
	Coefficient float64
	Strong      bool
}

// Correlate computes the Pearson correlation coefficient between a and b.
// Series of unequal length, or shorter than five points, yield OK=false
// rather than an unstable coefficient. Series with zero variance yield a
// coefficient of zero.
func Correlate(a, b []float64) CorrelationResult {
	if len(a) != len(b) || len(a) < minCorrelationPoints {
		return CorrelationResult{}
	}

	n := float64(len(a))
	meanA := mean(a)
	meanB := mean(b)

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA/n) * math.Sqrt(varB/n)
	if denom == 0 {
		return CorrelationResult{OK: true}
	}

	r := (cov / n) / denom
	return CorrelationResult{
		OK:          true,
		Coefficient: r,
		Strong:      math.Abs(r) > strongCorrelationBar,
	}
}
