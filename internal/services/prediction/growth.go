package prediction

import (
	"math"
	"time"
)

// GrowthModel projects a harvest date from the current predicted weight.
// Kept as an interface so the naive linear assumption can be replaced with a
// species growth curve without touching the prediction pipeline.
type GrowthModel interface {
	ProjectHarvestDate(currentKg, targetKg float64, from time.Time) time.Time
}

// LinearGrowth assumes a fixed daily weight gain.
// TODO: replace with a scientifically derived growth curve per species
type LinearGrowth struct {
	DailyGainKg float64
}

// NewLinearGrowth creates the default linear growth model
func NewLinearGrowth(dailyGainKg float64) *LinearGrowth {
	if dailyGainKg <= 0 {
		dailyGainKg = 0.005
	}
	return &LinearGrowth{DailyGainKg: dailyGainKg}
}

// ProjectHarvestDate returns from unchanged when the target weight is already
// met; otherwise it adds ceil((target-current)/dailyGain) days
func (g *LinearGrowth) ProjectHarvestDate(currentKg, targetKg float64, from time.Time) time.Time {
	if currentKg >= targetKg {
		return from
	}
	days := int(math.Ceil((targetKg - currentKg) / g.DailyGainKg))
	return from.AddDate(0, 0, days)
}
