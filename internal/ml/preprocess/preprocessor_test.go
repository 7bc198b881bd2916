package preprocess

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nereus/internal/domain/pond"
	"nereus/internal/domain/reading"
)

func testPond(recordedAt time.Time) *pond.Pond {
	return &pond.Pond{
		ID:         uuid.New(),
		Name:       "test pond",
		Species:    pond.SpeciesTilapia,
		StockCount: 1200,
		StartDate:  recordedAt.AddDate(0, 0, -90),
	}
}

func testReading(recordedAt time.Time) *reading.Reading {
	return &reading.Reading{
		ID:              uuid.New(),
		Temperature:     28.0,
		PH:              7.2,
		DissolvedOxygen: 6.8,
		Ammonia:         0.2,
		Nitrate:         12.0,
		Turbidity:       40.0,
		RecordedAt:      recordedAt,
	}
}

func TestPrepareFeatures_Determinism(t *testing.T) {
	p := New(mustConfig(t, validConfigJSON))
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	latest := testReading(recordedAt)
	pnd := testPond(recordedAt)
	history := []reading.Reading{*testReading(recordedAt.Add(-24 * time.Hour))}

	first, err := p.PrepareFeatures(latest, history, pnd)
	require.NoError(t, err)
	second, err := p.PrepareFeatures(latest, history, pnd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPrepareFeatures_OrderFollowsFeatureNames(t *testing.T) {
	cfg := mustConfig(t, validConfigJSON)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	vector, err := p.PrepareFeatures(testReading(recordedAt), nil, testPond(recordedAt))
	require.NoError(t, err)
	require.Len(t, vector, cfg.NumFeatures())

	// Undo scaling and check a handful of known positions against their names
	unscaled := make([]float64, len(vector))
	for i := range vector {
		unscaled[i] = vector[i]*cfg.Scaler.Scale[i] + cfg.Scaler.Center[i]
	}

	byName := make(map[string]float64, len(unscaled))
	for i, name := range cfg.Scaler.FeatureNames {
		byName[name] = unscaled[i]
	}

	assert.InDelta(t, 28.0, byName["temperature"], 1e-9)
	assert.InDelta(t, 7.2, byName["ph"], 1e-9)
	assert.InDelta(t, 90.0, byName["days_in_farm"], 1e-9)
	assert.InDelta(t, 14.0, byName["hour"], 1e-9)
	assert.InDelta(t, 28.0*6.8, byName["temp_do_interaction"], 1e-9)
}

func TestPrepareFeatures_BiologicalCapping(t *testing.T) {
	cfg := mustConfig(t, validConfigJSON)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	latest := testReading(recordedAt)
	latest.Temperature = 55.0 // above the [0, 50] limit

	vector, err := p.PrepareFeatures(latest, nil, testPond(recordedAt))
	require.NoError(t, err)

	tempIdx := indexOf(t, cfg, "temperature")
	unscaledTemp := vector[tempIdx]*cfg.Scaler.Scale[tempIdx] + cfg.Scaler.Center[tempIdx]
	assert.InDelta(t, 50.0, unscaledTemp, 1e-9)

	// Capping happens before engineering: the interaction uses 50, not 55
	interIdx := indexOf(t, cfg, "temp_do_interaction")
	unscaledInter := vector[interIdx]*cfg.Scaler.Scale[interIdx] + cfg.Scaler.Center[interIdx]
	assert.InDelta(t, 50.0*6.8, unscaledInter, 1e-9)
}

func TestClip_Idempotent(t *testing.T) {
	p := New(mustConfig(t, validConfigJSON))

	for _, v := range []float64{-5, 0, 25, 50, 55} {
		once := p.clip("temperature", v)
		twice := p.clip("temperature", once)
		assert.Equal(t, once, twice)
		assert.GreaterOrEqual(t, once, 0.0)
		assert.LessOrEqual(t, once, 50.0)
	}

	// Within range passes through exactly
	assert.Equal(t, 25.5, p.clip("temperature", 25.5))
	// No configured limit passes through unchanged
	assert.Equal(t, -123.0, p.clip("sin_hour", -123.0))
}

func TestPrepareFeatures_IdentityScalerScenario(t *testing.T) {
	cfg := mustConfig(t, `{
		"scaler": {"center": [0.0], "scale": [1.0], "feature_names": ["ph"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	vector, err := p.PrepareFeatures(testReading(recordedAt), nil, testPond(recordedAt))
	require.NoError(t, err)
	require.Len(t, vector, 1)
	assert.Equal(t, 7.2, vector[0])
}

func TestPrepareFeatures_ImputationOfMissingName(t *testing.T) {
	// "salinity" is never produced by the pipeline; its median must land
	// at that position exactly
	cfg := mustConfig(t, `{
		"scaler": {"center": [0.0, 0.0], "scale": [1.0, 1.0], "feature_names": ["ph", "salinity"]},
		"imputation_medians": {"salinity": 15.5},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	vector, err := p.PrepareFeatures(testReading(recordedAt), nil, testPond(recordedAt))
	require.NoError(t, err)
	assert.Equal(t, 15.5, vector[1])
}

func TestPrepareFeatures_MissingNameWithoutMedianStaysNaN(t *testing.T) {
	cfg := mustConfig(t, `{
		"scaler": {"center": [0.0, 0.0], "scale": [1.0, 1.0], "feature_names": ["ph", "salinity"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	vector, err := p.PrepareFeatures(testReading(recordedAt), nil, testPond(recordedAt))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(vector[1]))
	assert.Equal(t, 1, CheckFinite(vector))
}

func TestPrepareFeatures_NonNegativityFloor(t *testing.T) {
	// No biological limits configured, so a negative raw value survives
	// capping and must be floored before scaling
	cfg := mustConfig(t, `{
		"scaler": {"center": [0.0, 0.0], "scale": [1.0, 1.0], "feature_names": ["ammonia", "nitrate"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	latest := testReading(recordedAt)
	latest.Ammonia = -0.4
	latest.Nitrate = -2.0

	vector, err := p.PrepareFeatures(latest, nil, testPond(recordedAt))
	require.NoError(t, err)
	assert.Equal(t, 0.0, vector[0])
	assert.Equal(t, 0.0, vector[1])
}

func TestPrepareFeatures_ScalingRoundTrip(t *testing.T) {
	cfg := mustConfig(t, validConfigJSON)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	latest := testReading(recordedAt)
	history := []reading.Reading{
		*testReading(recordedAt.Add(-24 * time.Hour)),
		*testReading(recordedAt.Add(-48 * time.Hour)),
	}
	pnd := testPond(recordedAt)

	scaled, err := p.PrepareFeatures(latest, history, pnd)
	require.NoError(t, err)

	// Recover pre-scale values and re-derive them independently
	eng := NewEngineer(cfg)
	base := map[string]float64{
		"temperature":      latest.Temperature,
		"ph":               latest.PH,
		"dissolved_oxygen": latest.DissolvedOxygen,
		"ammonia":          latest.Ammonia,
		"nitrate":          latest.Nitrate,
		"turbidity":        latest.Turbidity,
	}
	expected := eng.Derive(Inputs{
		Base:       base,
		RecordedAt: recordedAt,
		DaysInFarm: pnd.DaysInFarm(recordedAt),
		HistoryDO:  []float64{6.8, 6.8},
	})
	for name, v := range base {
		expected[name] = v
	}

	for i, name := range cfg.Scaler.FeatureNames {
		recovered := scaled[i]*cfg.Scaler.Scale[i] + cfg.Scaler.Center[i]
		assert.InDelta(t, expected[name], recovered, 1e-9, "feature %s", name)
	}
}

func TestPrepareFeatures_PopulationFromPond(t *testing.T) {
	cfg := mustConfig(t, `{
		"scaler": {"center": [0.0], "scale": [1.0], "feature_names": ["population"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`)
	p := New(cfg)
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	vector, err := p.PrepareFeatures(testReading(recordedAt), nil, testPond(recordedAt))
	require.NoError(t, err)
	assert.Equal(t, 1200.0, vector[0])
}

func TestPrepareFeatures_NilInputs(t *testing.T) {
	p := New(mustConfig(t, validConfigJSON))
	recordedAt := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	_, err := p.PrepareFeatures(nil, nil, testPond(recordedAt))
	assert.Error(t, err)

	_, err = p.PrepareFeatures(testReading(recordedAt), nil, nil)
	assert.Error(t, err)
}

func indexOf(t *testing.T, cfg *Config, name string) int {
	t.Helper()
	for i, n := range cfg.Scaler.FeatureNames {
		if n == name {
			return i
		}
	}
	t.Fatalf("feature %s not in config", name)
	return -1
}
