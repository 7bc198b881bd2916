package preprocess

import (
	"math"

	"nereus/internal/domain/pond"
	"nereus/internal/domain/reading"
	"nereus/pkg/errors"
)

// nonNegativeFeatures must never be negative after preprocessing; matched by
// exact name, floored at zero before scaling
var nonNegativeFeatures = map[string]struct{}{
	"ammonia":      {},
	"nitrate":      {},
	"turbidity":    {},
	FeatPopulation: {},
	FeatDaysInFarm: {},
}

// Preprocessor transforms raw sensor readings into the exact numeric feature
// vector the trained regression model expects. The seven stages run in a fixed
// order; reordering any of them silently corrupts predictions, because the
// scaler parameters and imputation medians were captured against this exact
// sequence at training time.
type Preprocessor struct {
	cfg      *Config
	engineer *Engineer
}

// New creates a preprocessor for a validated contract
func New(cfg *Config) *Preprocessor {
	return &Preprocessor{
		cfg:      cfg,
		engineer: NewEngineer(cfg),
	}
}

// Config returns the bound preprocessing contract
func (p *Preprocessor) Config() *Config {
	return p.cfg
}

// PrepareFeatures builds the model input vector from the latest reading, up
// to 6 prior readings (newest-first), and pond context. Deterministic and
// side-effect-free for identical inputs.
func (p *Preprocessor) PrepareFeatures(latest *reading.Reading, history []reading.Reading, pnd *pond.Pond) ([]float64, error) {
	if latest == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "latest reading is nil")
	}
	if pnd == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "pond is nil")
	}

	// Stage 1: extract base features
	base := map[string]float64{
		"temperature":      latest.Temperature,
		"ph":               latest.PH,
		"dissolved_oxygen": latest.DissolvedOxygen,
		"ammonia":          latest.Ammonia,
		"nitrate":          latest.Nitrate,
		"turbidity":        latest.Turbidity,
	}
	if p.cfg.HasFeature(FeatPopulation) {
		base[FeatPopulation] = float64(pnd.StockCount)
	}

	// Stage 2: biological capping
	for name, v := range base {
		base[name] = p.clip(name, v)
	}

	// Stage 3: feature engineering on capped values
	historyDO := make([]float64, len(history))
	for i := range history {
		historyDO[i] = history[i].DissolvedOxygen
	}
	engineered := p.engineer.Derive(Inputs{
		Base:          base,
		RecordedAt:    latest.RecordedAt,
		DaysInFarm:    pnd.DaysInFarm(latest.RecordedAt),
		HistoryDO:     historyDO,
		KnownWeightKg: latest.FishWeightKg,
	})

	// Stage 4: ordered assembly following the trained feature order.
	// Names absent from the merged map become NaN, resolved by imputation.
	merged := make(map[string]float64, len(base)+len(engineered))
	for name, v := range base {
		merged[name] = v
	}
	for name, v := range engineered {
		merged[name] = v
	}

	vector := make([]float64, p.cfg.NumFeatures())
	for i, name := range p.cfg.Scaler.FeatureNames {
		if v, ok := merged[name]; ok {
			vector[i] = v
		} else {
			vector[i] = math.NaN()
		}
	}

	// Stage 5: imputation of non-finite values. A name without a configured
	// median keeps its non-finite value; the finite guard before inference
	// catches that configuration gap.
	for i, v := range vector {
		if !isFinite(v) {
			if median, ok := p.cfg.ImputationMedians[p.cfg.Scaler.FeatureNames[i]]; ok {
				vector[i] = median
			}
		}
	}

	// Stage 6: non-negativity floor
	for i, name := range p.cfg.Scaler.FeatureNames {
		if _, ok := nonNegativeFeatures[name]; ok {
			vector[i] = math.Max(0, vector[i])
		}
	}

	// Stage 7: robust scaling
	for i := range vector {
		vector[i] = (vector[i] - p.cfg.Scaler.Center[i]) / p.cfg.Scaler.Scale[i]
	}

	return vector, nil
}

// clip clamps a base feature to its configured biological range. Features
// without configured limits pass through unchanged.
func (p *Preprocessor) clip(name string, v float64) float64 {
	bounds, ok := p.cfg.BiologicalLimits[name]
	if !ok {
		return v
	}
	if v < bounds[0] {
		return bounds[0]
	}
	if v > bounds[1] {
		return bounds[1]
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFinite returns the index of the first non-finite value, or -1.
// Callers should convert a hit into an inference error rather than feeding
// the vector to the model.
func CheckFinite(vector []float64) int {
	for i, v := range vector {
		if !isFinite(v) {
			return i
		}
	}
	return -1
}
