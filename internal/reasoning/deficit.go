// Package reasoning provides the stateless analytical functions behind
// coaching insights: caloric balance, trend classification, correlation,
// goal progress, and single-sentence insight synthesis. Everything here
// is a pure function, safe to call concurrently and repeatedly.
package reasoning

import "math"

// Balance classification for a day's caloric intake versus expenditure.
const (
	BalanceDeficit = "deficit"
	BalanceSurplus = "surplus"
)

// DeficitResult is the outcome of a caloric balance calculation.
type DeficitResult struct {
	Net       float64 // intake - (basal + active); negative is a deficit
	Magnitude float64 // abs(Net)
	Balance   string  // BalanceDeficit | BalanceSurplus
}

// Deficit computes net caloric balance from intake, basal metabolic rate,
// and active burn. A net below zero classifies as a deficit.
func Deficit(intakeCalories, basalRate, activeBurn float64) DeficitResult {
	net := intakeCalories - (basalRate + activeBurn)
	balance := BalanceSurplus
	if net < 0 {
		balance = BalanceDeficit
	}
	return DeficitResult{
		Net:       net,
		Magnitude: math.Abs(net),
		Balance:   balance,
	}
}
