package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Deficit ───────────────────────────────────────────────────────────────

func TestDeficit(t *testing.T) {
	tests := []struct {
		name                  string
		intake, basal, active float64
		wantNet, wantMag      float64
		wantBalance           string
	}{
		{"deficit", 1800, 1600, 500, -300, 300, BalanceDeficit},
		{"surplus", 2600, 1600, 400, 600, 600, BalanceSurplus},
		{"exactly zero is surplus", 2000, 1500, 500, 0, 0, BalanceSurplus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Deficit(tt.intake, tt.basal, tt.active)
			assert.InDelta(t, tt.wantNet, res.Net, 1e-9)
			assert.InDelta(t, tt.wantMag, res.Magnitude, 1e-9)
			assert.Equal(t, tt.wantBalance, res.Balance)
		})
	}
}

// ─── Trend ─────────────────────────────────────────────────────────────────

func flat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestTrend_Up(t *testing.T) {
	series := append(flat(100, 7), flat(150, 7)...)
	res := Trend(series, 7)
	assert.Equal(t, TrendUp, res.Class)
	assert.InDelta(t, 50, res.PercentChange, 1e-9)
}

func TestTrend_Down(t *testing.T) {
	series := append(flat(100, 7), flat(80, 7)...)
	res := Trend(series, 7)
	assert.Equal(t, TrendDown, res.Class)
	assert.InDelta(t, -20, res.PercentChange, 1e-9)
}

func TestTrend_Stable(t *testing.T) {
	series := append(flat(100, 7), flat(100, 7)...)
	assert.Equal(t, TrendStable, Trend(series, 7).Class)

	// Movement inside the ±10% band is noise, not a trend.
	series = append(flat(100, 7), flat(109, 7)...)
	assert.Equal(t, TrendStable, Trend(series, 7).Class)
}

func TestTrend_InsufficientData(t *testing.T) {
	assert.Equal(t, TrendInsufficientData, Trend(flat(100, 13), 7).Class)
	assert.Equal(t, TrendInsufficientData, Trend(nil, 7).Class)
	assert.Equal(t, TrendInsufficientData, Trend(flat(100, 14), 0).Class)
}

func TestTrend_OnlyLastTwoWindowsCount(t *testing.T) {
	// Earlier points are ignored entirely.
	series := append(flat(9999, 10), append(flat(100, 7), flat(150, 7)...)...)
	assert.Equal(t, TrendUp, Trend(series, 7).Class)
}

// ─── Correlation ───────────────────────────────────────────────────────────

func TestCorrelate_PerfectPositive(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{10, 20, 30, 40, 50, 60}
	res := Correlate(a, b)
	require.True(t, res.OK)
	assert.InDelta(t, 1.0, res.Coefficient, 1e-9)
	assert.True(t, res.Strong)
}

func TestCorrelate_PerfectNegative(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{5, 4, 3, 2, 1}
	res := Correlate(a, b)
	require.True(t, res.OK)
	assert.InDelta(t, -1.0, res.Coefficient, 1e-9)
	assert.True(t, res.Strong)
}

func TestCorrelate_NotEnoughData(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{1, 2, 3, 4}
	assert.False(t, Correlate(a, b).OK)
}

func TestCorrelate_UnequalLengths(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 2, 3, 4, 5, 6}
	assert.False(t, Correlate(a, b).OK)
}

func TestCorrelate_ZeroVariance(t *testing.T) {
	a := flat(5, 6)
	b := []float64{1, 2, 3, 4, 5, 6}
	res := Correlate(a, b)
	require.True(t, res.OK)
	assert.Zero(t, res.Coefficient)
	assert.False(t, res.Strong)
}

// ─── Goal progress ─────────────────────────────────────────────────────────

func TestGoalProgress(t *testing.T) {
	res, err := GoalProgress(8500, 10000)
	require.NoError(t, err)
	assert.InDelta(t, 85, res.ProgressPct, 1e-9)
	assert.False(t, res.IsMet)
	assert.InDelta(t, 1500, res.Remaining, 1e-9)
}

func TestGoalProgress_Met(t *testing.T) {
	res, err := GoalProgress(12000, 10000)
	require.NoError(t, err)
	assert.True(t, res.IsMet)
	assert.Zero(t, res.Remaining)
	assert.InDelta(t, 120, res.ProgressPct, 1e-9)
}

func TestGoalProgress_NonPositiveTargetIsConfigError(t *testing.T) {
	_, err := GoalProgress(100, 0)
	assert.Error(t, err)

	_, err = GoalProgress(100, -5)
	assert.Error(t, err)
}
