package reasoning

import (
	"fmt"
	"sort"
)

// InsightFact kinds, in declaration order. The order doubles as the
// tie-break when two facts carry equal urgency.
const (
	KindGoalNearMiss  = "goal_near_miss"
	KindNegativeTrend = "negative_trend"
	KindPositiveTrend = "positive_trend"
	KindCorrelation   = "correlation"
	KindDefault       = "default"
)

// kindRank maps a kind to its declaration position for tie-breaking.
var kindRank = map[string]int{
	KindGoalNearMiss:  0,
	KindNegativeTrend: 1,
	KindPositiveTrend: 2,
	KindCorrelation:   3,
	KindDefault:       4,
}

// Fixed urgencies per kind. Goal near-misses outrank trends, trends
// outrank correlations, and the filler fact ranks last.
const (
	urgencyGoalNearMiss  = 90
	urgencyNegativeTrend = 70
	urgencyPositiveTrend = 50
	urgencyCorrelation   = 40
	urgencyDefault       = 10
)

// InsightFact is a typed, prioritizable unit of coaching insight.
type InsightFact struct {
	Kind    string
	Urgency int
	Text    string
}

// Synthesize totally orders facts by urgency descending, tie-broken by
// kind declaration order, and returns the top fact's text. An empty
// slice yields the empty string.
func Synthesize(facts []InsightFact) string {
	if len(facts) == 0 {
		return ""
	}
	sorted := make([]InsightFact, len(facts))
	copy(sorted, facts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Urgency != sorted[j].Urgency {
			return sorted[i].Urgency > sorted[j].Urgency
		}
		return kindRank[sorted[i].Kind] < kindRank[sorted[j].Kind]
	})
	return sorted[0].Text
}

// nearMissFloorPct is the progress percentage above which an unmet goal
// becomes a near-miss fact.
const nearMissFloorPct = 80

// CollectFacts assembles candidate facts from the analytical results at
// hand. Any input may be nil; when nothing noteworthy emerges a default
// filler fact keeps the synthesis total.
func CollectFacts(metric string, goal *GoalProgressResult, trend *TrendResult, corr *CorrelationResult) []InsightFact {
	var facts []InsightFact

	if goal != nil && !goal.IsMet && goal.ProgressPct > nearMissFloorPct {
		facts = append(facts, InsightFact{
			Kind:    KindGoalNearMiss,
			Urgency: urgencyGoalNearMiss,
			Text: fmt.Sprintf("You're at %.0f%% of your %s goal — a small push today closes the gap.",
				goal.ProgressPct, metric),
		})
	}

	if trend != nil {
		switch trend.Class {
		case TrendDown:
			facts = append(facts, InsightFact{
				Kind:    KindNegativeTrend,
				Urgency: urgencyNegativeTrend,
				Text: fmt.Sprintf("Your %s has dipped about %.0f%% lately — worth a closer look.",
					metric, -trend.PercentChange),
			})
		case TrendUp:
			facts = append(facts, InsightFact{
				Kind:    KindPositiveTrend,
				Urgency: urgencyPositiveTrend,
				Text: fmt.Sprintf("Your %s is up about %.0f%% recently — nice momentum.",
					metric, trend.PercentChange),
			})
		}
	}

	if corr != nil && corr.OK && corr.Strong {
		direction := "move together"
		if corr.Coefficient < 0 {
			direction = "pull in opposite directions"
		}
		facts = append(facts, InsightFact{
			Kind:    KindCorrelation,
			Urgency: urgencyCorrelation,
			Text:    fmt.Sprintf("These two metrics strongly %s (r=%.2f).", direction, corr.Coefficient),
		})
	}

	if len(facts) == 0 {
		facts = append(facts, InsightFact{
			Kind:    KindDefault,
			Urgency: urgencyDefault,
			Text:    "Keep logging consistently — steady data makes for sharper coaching.",
		})
	}
	return facts
}
