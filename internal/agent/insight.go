package agent

import (
	"github.com/pulsecoach/pulsecoach/internal/reasoning"
	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// harvest accumulates analytical signal from successful tool payloads as
// the loop runs, so the reasoning engine can synthesize one coaching
// sentence after the final answer. It recognizes two payload shapes:
// pre-analyzed results from the reasoning tools (progress_pct,
// classification, coefficient) and raw numeric series under
// conventional keys (series, history, values).
type harvest struct {
	metric string
	goal   *reasoning.GoalProgressResult
	trend  *reasoning.TrendResult
	corr   *reasoning.CorrelationResult
}

// rawSeriesKeys are the payload keys checked, in order, for a raw
// numeric series worth a trend pass.
var rawSeriesKeys = []string{"series", "history", "values"}

func (h *harvest) observe(toolName string, result schema.ToolResult) {
	if !result.Success || result.Data == nil {
		return
	}
	data := result.Data

	if name, ok := data["metric"].(string); ok && name != "" {
		h.metric = name
	}

	// Pre-analyzed reasoning-tool payloads.
	if pct, ok := number(data["progress_pct"]); ok {
		met, _ := data["is_met"].(bool)
		remaining, _ := number(data["remaining"])
		h.goal = &reasoning.GoalProgressResult{ProgressPct: pct, IsMet: met, Remaining: remaining}
	}
	if class, ok := data["classification"].(string); ok {
		switch class {
		case reasoning.TrendUp, reasoning.TrendDown, reasoning.TrendStable:
			pct, _ := number(data["percent_change"])
			h.trend = &reasoning.TrendResult{Class: class, PercentChange: pct}
		}
	}
	if coef, ok := number(data["coefficient"]); ok {
		strong, _ := data["strong"].(bool)
		h.corr = &reasoning.CorrelationResult{OK: true, Coefficient: coef, Strong: strong}
	}

	// Raw provider payloads.
	if series, ok := findSeries(data); ok {
		window := len(series) / 2
		if window > 7 {
			window = 7
		}
		if res := reasoning.Trend(series, window); res.Class != reasoning.TrendInsufficientData {
			h.trend = &res
		}
	}
	if current, ok := number(data["current"]); ok {
		if target, ok := number(data["target"]); ok {
			if res, err := reasoning.GoalProgress(current, target); err == nil {
				h.goal = &res
			}
		}
	}
}

// synthesize produces the insight sentence, or empty when no tool
// returned anything worth analyzing.
func (h *harvest) synthesize() string {
	if h.goal == nil && h.trend == nil && h.corr == nil {
		return ""
	}
	metric := h.metric
	if metric == "" {
		metric = "activity"
	}
	facts := reasoning.CollectFacts(metric, h.goal, h.trend, h.corr)
	return reasoning.Synthesize(facts)
}

func findSeries(data map[string]any) ([]float64, bool) {
	for _, key := range rawSeriesKeys {
		raw, ok := data[key].([]any)
		if !ok && data[key] != nil {
			if typed, isTyped := data[key].([]float64); isTyped {
				return typed, len(typed) >= 2
			}
		}
		if !ok {
			continue
		}
		series := make([]float64, 0, len(raw))
		for _, item := range raw {
			f, ok := number(item)
			if !ok {
				series = nil
				break
			}
			series = append(series, f)
		}
		if len(series) >= 2 {
			return series, true
		}
	}
	return nil, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
