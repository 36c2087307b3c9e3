package build

import (
	"fmt"
	"math"

	"github.com/RachedNaguez/PcBuilder/internal/model"
)

// Total sums the component prices. Prices that failed to parse count as
// zero, so the total is always a finite number. Callers recompute it on
// every change to the component list rather than caching it.
func Total(components []model.Component) float64 {
	var sum float64
	for _, c := range components {
		if !c.Price.Valid {
			continue
		}
		if math.IsNaN(c.Price.Amount) || math.IsInf(c.Price.Amount, 0) {
			continue
		}
		sum += c.Price.Amount
	}
	return sum
}

// Result assembles a BuildResult from a normalized component list, with
// the total derived by Total.
func Result(components []model.Component, requestedBudget float64) *model.BuildResult {
	return &model.BuildResult{
		Components:      components,
		TotalPrice:      Total(components),
		RequestedBudget: requestedBudget,
	}
}

// Summary renders the plain-text line a consumer places on the clipboard
// when the user confirms a build.
func Summary(total float64) string {
	return fmt.Sprintf("PC Build Total: $%.2f", total)
}
