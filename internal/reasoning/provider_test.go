package reasoning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_ToolSchemas(t *testing.T) {
	p := NewProvider()
	schemas := p.ToolSchemas("any-user")

	var names []string
	for _, ts := range schemas {
		names = append(names, ts.Name)
	}
	assert.Equal(t, []string{"calculate_deficit", "analyze_trend", "analyze_correlation", "check_goal_progress"}, names)
}

func TestProvider_CalculateDeficit(t *testing.T) {
	p := NewProvider()
	res := p.Execute(context.Background(), "calculate_deficit", map[string]any{
		"intake_calories": 1800.0,
		"basal_rate":      1600.0,
		"active_burn":     500.0,
	}, "u1")

	require.True(t, res.Success)
	assert.Equal(t, BalanceDeficit, res.Data["balance"])
	assert.InDelta(t, 300, res.Data["magnitude"].(float64), 1e-9)
}

func TestProvider_AnalyzeTrend(t *testing.T) {
	p := NewProvider()

	series := make([]any, 0, 14)
	for i := 0; i < 7; i++ {
		series = append(series, 100.0)
	}
	for i := 0; i < 7; i++ {
		series = append(series, 150.0)
	}

	res := p.Execute(context.Background(), "analyze_trend", map[string]any{
		"series": series,
		"window": 7.0, // JSON numbers arrive as float64
	}, "u1")

	require.True(t, res.Success)
	assert.Equal(t, TrendUp, res.Data["classification"])
}

func TestProvider_AnalyzeCorrelation_NotEnoughData(t *testing.T) {
	p := NewProvider()
	res := p.Execute(context.Background(), "analyze_correlation", map[string]any{
		"series_a": []any{1.0, 2.0},
		"series_b": []any{2.0, 4.0},
	}, "u1")

	require.True(t, res.Success)
	assert.Equal(t, "not_enough_data", res.Data["classification"])
}

func TestProvider_CheckGoalProgress_BadTarget(t *testing.T) {
	p := NewProvider()
	res := p.Execute(context.Background(), "check_goal_progress", map[string]any{
		"current": 100.0,
		"target":  0.0,
	}, "u1")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestProvider_MissingArgument(t *testing.T) {
	p := NewProvider()
	res := p.Execute(context.Background(), "analyze_trend", map[string]any{
		"window": 7.0,
	}, "u1")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "series")
}

func TestProvider_UnknownTool(t *testing.T) {
	p := NewProvider()
	res := p.Execute(context.Background(), "mystery", nil, "u1")
	assert.False(t, res.Success)
}
