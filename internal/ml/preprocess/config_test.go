package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nereus/pkg/errors"
)

const validConfigJSON = `{
	"scaler": {
		"center": [28.0, 7.0, 6.5, 0.2, 10.0, 50.0, 90.0, 180.0, 12.0, 0.0, 0.0, 180.0, 6.5, 0.08],
		"scale": [4.0, 1.0, 1.5, 0.3, 15.0, 80.0, 60.0, 120.0, 8.0, 0.7, 0.7, 30.0, 1.2, 0.1],
		"feature_names": [
			"temperature", "ph", "dissolved_oxygen", "ammonia", "nitrate", "turbidity",
			"days_in_farm", "day_of_year", "hour", "sin_hour", "cos_hour",
			"temp_do_interaction", "avg_do_7d", "avg_wqi_7d"
		]
	},
	"imputation_medians": {
		"temperature": 28.0,
		"dissolved_oxygen": 6.5,
		"avg_do_7d": 6.5
	},
	"biological_limits": {
		"temperature": [0, 50],
		"ph": [0, 14],
		"dissolved_oxygen": [0, 20],
		"ammonia": [0, 10],
		"nitrate": [0, 100],
		"turbidity": [0, 1000]
	},
	"constants": {
		"optimal_do": 6.0,
		"initial_day_offset": 30
	},
	"target_columns": ["fish_weight", "fish_length"]
}`

func mustConfig(t *testing.T, data string) *Config {
	t.Helper()
	cfg, err := Parse([]byte(data))
	require.NoError(t, err)
	return cfg
}

func TestParse_Valid(t *testing.T) {
	cfg := mustConfig(t, validConfigJSON)

	assert.Equal(t, 14, cfg.NumFeatures())
	assert.True(t, cfg.HasFeature("avg_wqi_7d"))
	assert.False(t, cfg.HasFeature("population"))
	assert.Equal(t, 6.0, cfg.Constant(ConstOptimalDO))
	assert.Equal(t, 30.0, cfg.Constant(ConstInitialDayOffset))
	assert.Equal(t, []string{"fish_weight", "fish_length"}, cfg.TargetColumns)
}

func TestParse_LengthMismatch(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [0, 0], "scale": [1], "feature_names": ["ph"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestParse_ZeroScale(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [0], "scale": [0], "feature_names": ["ph"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
	assert.Contains(t, err.Error(), "scale[0]")
}

func TestParse_MissingConstant(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [0], "scale": [1], "feature_names": ["ph"]},
		"constants": {"optimal_do": 6.0}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
	assert.Contains(t, err.Error(), "initial_day_offset")
}

func TestParse_EmptyFeatureNames(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [], "scale": [], "feature_names": []},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestParse_MalformedLimitPair(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [0], "scale": [1], "feature_names": ["ph"]},
		"biological_limits": {"ph": [0, 7, 14]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestParse_InvertedLimitPair(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [0], "scale": [1], "feature_names": ["ph"]},
		"biological_limits": {"ph": [14, 0]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	_, err := Parse([]byte(`{
		"scaler": {"center": [0], "scale": [1], "feature_names": ["ph"]},
		"constants": {"optimal_do": 6.0, "initial_day_offset": 30},
		"mystery_section": {}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}
