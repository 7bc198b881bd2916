package prediction

import (
	"math"

	"nereus/internal/domain/reading"
)

// ConfidenceScorer rates how much to trust a prediction given the readings
// that fed it. Heuristic and known-provisional, hence pluggable.
type ConfidenceScorer interface {
	Score(readings []reading.Reading) float64
}

// Blend weights and output clamp for the default scorer
const (
	consistencyWeight  = 0.6
	completenessWeight = 0.4
	minConfidence      = 0.5
	maxConfidence      = 0.95
	fullWindow         = 7
)

// VariabilityScorer blends dissolved-oxygen consistency (lower coefficient of
// variation scores higher) with data completeness (readings available out of
// the full 7-reading window).
// TODO: improve the algorithm; the weights are inherited heuristics
type VariabilityScorer struct{}

// NewVariabilityScorer creates the default confidence scorer
func NewVariabilityScorer() *VariabilityScorer {
	return &VariabilityScorer{}
}

// Score computes the blended confidence, clamped to [0.5, 0.95]
func (s *VariabilityScorer) Score(readings []reading.Reading) float64 {
	consistency := 1.0 - math.Min(s.coefficientOfVariation(readings), 1.0)
	completeness := math.Min(float64(len(readings))/fullWindow, 1.0)

	blend := consistencyWeight*consistency + completenessWeight*completeness
	return math.Min(math.Max(blend, minConfidence), maxConfidence)
}

// coefficientOfVariation is stddev/mean of the dissolved-oxygen series.
// Fewer than two readings give zero variation by definition.
func (s *VariabilityScorer) coefficientOfVariation(readings []reading.Reading) float64 {
	if len(readings) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range readings {
		mean += r.DissolvedOxygen
	}
	mean /= float64(len(readings))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, r := range readings {
		diff := r.DissolvedOxygen - mean
		variance += diff * diff
	}
	variance /= float64(len(readings))

	return math.Sqrt(variance) / mean
}
