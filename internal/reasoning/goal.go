package reasoning

import "fmt"

// GoalProgressResult compares a current metric value against its target.
type GoalProgressResult struct {
	ProgressPct float64
	IsMet       bool
	Remaining   float64 // never negative
}

// GoalProgress computes progress toward target. A non-positive target is
// a configuration error, not a divide-by-zero to be silently caught.
func GoalProgress(current, target float64) (GoalProgressResult, error) {
	if target <= 0 {
		return GoalProgressResult{}, fmt.Errorf("goal target must be positive, got %v", target)
	}

	remaining := target - current
	if remaining < 0 {
		remaining = 0
	}
	return GoalProgressResult{
		ProgressPct: current / target * 100,
		IsMet:       current >= target,
		Remaining:   remaining,
	}, nil
}
