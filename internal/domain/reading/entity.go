package reading

import (
	"time"

	"github.com/google/uuid"
)

// Reading represents a single water-quality measurement for a pond.
// Immutable once persisted. FishWeightKg/FishLengthCm are optional manual
// samples used for feeding-efficiency features and for later model retraining.
type Reading struct {
	ID              uuid.UUID `ch:"id" json:"id"`
	PondID          uuid.UUID `ch:"pond_id" json:"pond_id"`
	Temperature     float64   `ch:"temperature" json:"temperature"`
	PH              float64   `ch:"ph" json:"ph"`
	DissolvedOxygen float64   `ch:"dissolved_oxygen" json:"dissolved_oxygen"`
	Ammonia         float64   `ch:"ammonia" json:"ammonia"`
	Nitrate         float64   `ch:"nitrate" json:"nitrate"`
	Turbidity       float64   `ch:"turbidity" json:"turbidity"`

	FishWeightKg *float64 `ch:"fish_weight_kg" json:"fish_weight_kg,omitempty"`
	FishLengthCm *float64 `ch:"fish_length_cm" json:"fish_length_cm,omitempty"`

	RecordedAt time.Time `ch:"recorded_at" json:"recorded_at"`
	DeviceID   string    `ch:"device_id" json:"device_id,omitempty"`
	CreatedAt  time.Time `ch:"created_at" json:"created_at"`
}

// AcceptedRanges are the hard bounds enforced at ingest. Values outside are
// rejected as sensor noise or transcription errors before they reach storage.
var AcceptedRanges = map[string][2]float64{
	"temperature":      {0, 50},
	"ph":               {0, 14},
	"dissolved_oxygen": {0, 20},
	"ammonia":          {0, 10},
	"nitrate":          {0, 100},
	"turbidity":        {0, 1000},
}

// Validate checks that all sensor fields fall within the accepted ranges
func (r *Reading) Validate() error {
	checks := map[string]float64{
		"temperature":      r.Temperature,
		"ph":               r.PH,
		"dissolved_oxygen": r.DissolvedOxygen,
		"ammonia":          r.Ammonia,
		"nitrate":          r.Nitrate,
		"turbidity":        r.Turbidity,
	}
	for field, v := range checks {
		bounds := AcceptedRanges[field]
		if v < bounds[0] || v > bounds[1] {
			return &OutOfRangeError{Field: field, Value: v, Min: bounds[0], Max: bounds[1]}
		}
	}
	return nil
}
