package preprocess

import (
	"bytes"
	"encoding/json"
	"os"

	"nereus/pkg/errors"
)

// Required constant keys consumed by feature engineering
const (
	ConstOptimalDO        = "optimal_do"
	ConstInitialDayOffset = "initial_day_offset"
)

var requiredConstants = []string{ConstOptimalDO, ConstInitialDayOffset}

// ScalerConfig holds the robust-scaler parameters captured at training time.
// FeatureNames defines the canonical feature order for every downstream array.
type ScalerConfig struct {
	Center       []float64 `json:"center"`
	Scale        []float64 `json:"scale"`
	FeatureNames []string  `json:"feature_names"`
}

// Config is the preprocessing contract for a trained model. Parsed once at
// startup from the bundled JSON artifact; read-only for the process lifetime
// and safe to share across concurrent prediction requests.
type Config struct {
	Scaler            ScalerConfig         `json:"scaler"`
	ImputationMedians map[string]float64   `json:"imputation_medians"`
	BiologicalLimits  map[string][]float64 `json:"biological_limits"`
	Constants         map[string]float64   `json:"constants"`
	TargetColumns     []string             `json:"target_columns"`

	featureSet map[string]struct{}
}

// Load reads and validates a preprocessing configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, "read %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a preprocessing configuration document.
// Unknown keys are rejected: the contract is versioned alongside the model
// artifact and a key we don't understand means a contract we weren't built for.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, "decode: %v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.featureSet = make(map[string]struct{}, len(cfg.Scaler.FeatureNames))
	for _, name := range cfg.Scaler.FeatureNames {
		cfg.featureSet[name] = struct{}{}
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	n := len(c.Scaler.FeatureNames)
	if n == 0 {
		return errors.Wrap(errors.ErrConfiguration, "scaler.feature_names is empty")
	}
	if len(c.Scaler.Center) != n || len(c.Scaler.Scale) != n {
		return errors.Wrapf(errors.ErrConfiguration,
			"scaler arrays misaligned: %d feature names, %d center, %d scale",
			n, len(c.Scaler.Center), len(c.Scaler.Scale))
	}

	// A zero scale factor would propagate Inf through every scaled vector
	for i, s := range c.Scaler.Scale {
		if s == 0 {
			return errors.Wrapf(errors.ErrConfiguration,
				"scaler.scale[%d] (%s) is zero", i, c.Scaler.FeatureNames[i])
		}
	}

	for name, bounds := range c.BiologicalLimits {
		if len(bounds) != 2 {
			return errors.Wrapf(errors.ErrConfiguration,
				"biological_limits[%s] must be a [min, max] pair, got %d values", name, len(bounds))
		}
		if bounds[0] > bounds[1] {
			return errors.Wrapf(errors.ErrConfiguration,
				"biological_limits[%s]: min %.4f exceeds max %.4f", name, bounds[0], bounds[1])
		}
	}

	for _, key := range requiredConstants {
		if _, ok := c.Constants[key]; !ok {
			return errors.Wrapf(errors.ErrConfiguration, "missing required constant %q", key)
		}
	}

	return nil
}

// NumFeatures returns the length N of the model input vector
func (c *Config) NumFeatures() int {
	return len(c.Scaler.FeatureNames)
}

// HasFeature reports whether the trained feature set includes name
func (c *Config) HasFeature(name string) bool {
	_, ok := c.featureSet[name]
	return ok
}

// Constant returns a named scalar constant from the contract
func (c *Config) Constant(name string) float64 {
	return c.Constants[name]
}
