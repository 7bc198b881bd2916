package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nereus/internal/domain/reading"
)

func readingsWithDO(values ...float64) []reading.Reading {
	out := make([]reading.Reading, len(values))
	for i, v := range values {
		out[i].DissolvedOxygen = v
	}
	return out
}

func TestVariabilityScorer_StableFullWindow(t *testing.T) {
	scorer := NewVariabilityScorer()

	// Seven identical readings: zero variation, full completeness
	score := scorer.Score(readingsWithDO(6.5, 6.5, 6.5, 6.5, 6.5, 6.5, 6.5))
	assert.InDelta(t, 0.95, score, 1e-9, "perfect data clamps at the ceiling")
}

func TestVariabilityScorer_SingleReading(t *testing.T) {
	scorer := NewVariabilityScorer()

	// One reading: zero variation by definition, 1/7 completeness
	// 0.6*1.0 + 0.4*(1/7) = 0.6571...
	score := scorer.Score(readingsWithDO(6.5))
	assert.InDelta(t, 0.6+0.4/7, score, 1e-9)
}

func TestVariabilityScorer_NoisyData(t *testing.T) {
	scorer := NewVariabilityScorer()

	stable := scorer.Score(readingsWithDO(6.4, 6.5, 6.6, 6.5, 6.4, 6.5, 6.6))
	noisy := scorer.Score(readingsWithDO(2.0, 9.0, 3.0, 8.5, 2.5, 9.5, 4.0))

	assert.Greater(t, stable, noisy, "noisier DO series scores lower")
	assert.GreaterOrEqual(t, noisy, 0.5, "floor holds even for very noisy data")
}

func TestVariabilityScorer_Clamped(t *testing.T) {
	scorer := NewVariabilityScorer()

	// Empty input still lands inside the clamp range
	score := scorer.Score(nil)
	assert.GreaterOrEqual(t, score, 0.5)
	assert.LessOrEqual(t, score, 0.95)
}

func TestVariabilityScorer_ZeroMeanSeries(t *testing.T) {
	scorer := NewVariabilityScorer()

	// All-zero DO would divide by zero in CoV; treated as zero variation
	score := scorer.Score(readingsWithDO(0, 0, 0))
	assert.GreaterOrEqual(t, score, 0.5)
	assert.LessOrEqual(t, score, 0.95)
}
