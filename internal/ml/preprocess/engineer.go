package preprocess

import (
	"math"
	"time"
)

// Engineered feature names
const (
	FeatDaysInFarm        = "days_in_farm"
	FeatDayOfYear         = "day_of_year"
	FeatHour              = "hour"
	FeatSinHour           = "sin_hour"
	FeatCosHour           = "cos_hour"
	FeatTempDOInteraction = "temp_do_interaction"
	FeatAvgDO7d           = "avg_do_7d"
	FeatAvgWQI7d          = "avg_wqi_7d"
	FeatFeedingEfficiency = "feeding_efficiency"
	FeatPopulation        = "population"
)

// WindowSize is the number of readings (current included) averaged for
// the 7-day dissolved-oxygen feature, matching the training pipeline's
// rolling(window=7, min_periods=1)
const WindowSize = 7

// Engineer derives secondary features from capped base features and short
// reading history. Pure computation, no I/O.
type Engineer struct {
	cfg *Config
}

// NewEngineer creates a feature engineer bound to a preprocessing contract
func NewEngineer(cfg *Config) *Engineer {
	return &Engineer{cfg: cfg}
}

// Inputs bundles everything feature derivation needs. HistoryDO holds prior
// dissolved-oxygen values ordered newest-first, excluding the current reading.
type Inputs struct {
	Base          map[string]float64
	RecordedAt    time.Time
	DaysInFarm    float64
	HistoryDO     []float64
	KnownWeightKg *float64
}

// Derive computes the engineered feature map. Results are keyed by name, so
// computation order does not matter; ordering happens at vector assembly.
func (e *Engineer) Derive(in Inputs) map[string]float64 {
	out := make(map[string]float64, 9)

	out[FeatDaysInFarm] = in.DaysInFarm
	out[FeatDayOfYear] = float64(in.RecordedAt.YearDay())

	hour := float64(in.RecordedAt.Hour())
	out[FeatHour] = hour

	// Cyclical encoding keeps hour 23 numerically adjacent to hour 0
	out[FeatSinHour] = math.Sin(2 * math.Pi * hour / 24)
	out[FeatCosHour] = math.Cos(2 * math.Pi * hour / 24)

	out[FeatTempDOInteraction] = in.Base["temperature"] * in.Base["dissolved_oxygen"]

	avgDO := e.rollingMeanDO(in.Base["dissolved_oxygen"], in.HistoryDO)
	out[FeatAvgDO7d] = avgDO

	optimalDO := e.cfg.Constant(ConstOptimalDO)
	out[FeatAvgWQI7d] = math.Abs(avgDO-optimalDO) / optimalDO

	if e.cfg.HasFeature(FeatFeedingEfficiency) {
		out[FeatFeedingEfficiency] = e.feedingEfficiency(in.KnownWeightKg, in.DaysInFarm)
	}

	return out
}

// rollingMeanDO averages the current DO value with up to WindowSize-1 of
// the most recent historical values. With no history this degenerates to the
// current value alone.
func (e *Engineer) rollingMeanDO(current float64, history []float64) float64 {
	sum := current
	count := 1.0

	limit := WindowSize - 1
	if len(history) < limit {
		limit = len(history)
	}
	for i := 0; i < limit; i++ {
		sum += history[i]
		count++
	}

	return sum / count
}

// feedingEfficiency is known fish weight over elapsed farm days. When no
// sampled weight is available the configured imputation median stands in;
// without a median the value stays NaN for the downstream finite guard.
func (e *Engineer) feedingEfficiency(knownWeightKg *float64, daysInFarm float64) float64 {
	if knownWeightKg == nil {
		if median, ok := e.cfg.ImputationMedians[FeatFeedingEfficiency]; ok {
			return median
		}
		return math.NaN()
	}
	return *knownWeightKg / (daysInFarm + e.cfg.Constant(ConstInitialDayOffset))
}
