package reasoning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// Provider exposes the reasoning engine as a capability provider, so the
// completion service can invoke analysis directly instead of the
// orchestrator always post-processing.
type Provider struct{}

// NewProvider returns the reasoning capability provider.
func NewProvider() *Provider { return &Provider{} }

// Name implements schema.CapabilityProvider.
func (p *Provider) Name() string { return "insights" }

// ToolSchemas implements schema.CapabilityProvider. The reasoning tool
// set is the same for every user.
func (p *Provider) ToolSchemas(_ string) []schema.ToolSchema {
	return []schema.ToolSchema{
		{
			Name:        "calculate_deficit",
			Description: "Calculate net caloric balance from intake, basal rate, and active burn.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"intake_calories": {"type": "number", "description": "Calories consumed"},
					"basal_rate": {"type": "number", "description": "Basal metabolic rate in calories"},
					"active_burn": {"type": "number", "description": "Calories burned through activity"}
				},
				"required": ["intake_calories", "basal_rate", "active_burn"]
			}`),
		},
		{
			Name:        "analyze_trend",
			Description: "Classify a numeric metric series as up, down, or stable using short/long moving averages.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"series": {"type": "array", "items": {"type": "number"}, "description": "Ordered metric values, oldest first"},
					"window": {"type": "integer", "description": "Moving-average window size"}
				},
				"required": ["series", "window"]
			}`),
		},
		{
			Name:        "analyze_correlation",
			Description: "Compute the Pearson correlation between two equal-length metric series.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"series_a": {"type": "array", "items": {"type": "number"}},
					"series_b": {"type": "array", "items": {"type": "number"}}
				},
				"required": ["series_a", "series_b"]
			}`),
		},
		{
			Name:        "check_goal_progress",
			Description: "Compare a current metric value against its target.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"current": {"type": "number"},
					"target": {"type": "number", "description": "Must be positive"}
				},
				"required": ["current", "target"]
			}`),
		},
	}
}

// Execute implements schema.CapabilityProvider.
func (p *Provider) Execute(_ context.Context, toolName string, args map[string]any, _ string) schema.ToolResult {
	switch toolName {
	case "calculate_deficit":
		return p.execDeficit(args)
	case "analyze_trend":
		return p.execTrend(args)
	case "analyze_correlation":
		return p.execCorrelation(args)
	case "check_goal_progress":
		return p.execGoal(args)
	default:
		return schema.FailResult(fmt.Sprintf("unknown reasoning tool %q", toolName))
	}
}

func (p *Provider) execDeficit(args map[string]any) schema.ToolResult {
	intake, err := floatArg(args, "intake_calories")
	if err != nil {
		return schema.FailResult(err.Error())
	}
	basal, err := floatArg(args, "basal_rate")
	if err != nil {
		return schema.FailResult(err.Error())
	}
	active, err := floatArg(args, "active_burn")
	if err != nil {
		return schema.FailResult(err.Error())
	}

	res := Deficit(intake, basal, active)
	return schema.OKResult(map[string]any{
		"net":       res.Net,
		"magnitude": res.Magnitude,
		"balance":   res.Balance,
	})
}

func (p *Provider) execTrend(args map[string]any) schema.ToolResult {
	series, err := seriesArg(args, "series")
	if err != nil {
		return schema.FailResult(err.Error())
	}
	window, err := floatArg(args, "window")
	if err != nil {
		return schema.FailResult(err.Error())
	}

	res := Trend(series, int(window))
	data := map[string]any{"classification": res.Class}
	if res.Class != TrendInsufficientData {
		data["percent_change"] = res.PercentChange
	}
	return schema.OKResult(data)
}

func (p *Provider) execCorrelation(args map[string]any) schema.ToolResult {
	a, err := seriesArg(args, "series_a")
	if err != nil {
		return schema.FailResult(err.Error())
	}
	b, err := seriesArg(args, "series_b")
	if err != nil {
		return schema.FailResult(err.Error())
	}

	res := Correlate(a, b)
	if !res.OK {
		return schema.OKResult(map[string]any{"classification": "not_enough_data"})
	}
	return schema.OKResult(map[string]any{
		"coefficient": res.Coefficient,
		"strong":      res.Strong,
	})
}

func (p *Provider) execGoal(args map[string]any) schema.ToolResult {
	current, err := floatArg(args, "current")
	if err != nil {
		return schema.FailResult(err.Error())
	}
	target, err := floatArg(args, "target")
	if err != nil {
		return schema.FailResult(err.Error())
	}

	res, err := GoalProgress(current, target)
	if err != nil {
		return schema.FailResult(err.Error())
	}
	return schema.OKResult(map[string]any{
		"progress_pct": res.ProgressPct,
		"is_met":       res.IsMet,
		"remaining":    res.Remaining,
	})
}

// ---------------------------------------------------------------------------
// Argument decoding
// ---------------------------------------------------------------------------

func floatArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
	return f, nil
}

func seriesArg(args map[string]any, key string) ([]float64, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of numbers", key)
	}
	series := make([]float64, 0, len(raw))
	for _, item := range raw {
		f, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("argument %q must contain only numbers", key)
		}
		series = append(series, f)
	}
	return series, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
