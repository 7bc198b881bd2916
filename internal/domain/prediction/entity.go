package prediction

import (
	"time"

	"github.com/google/uuid"
)

// Prediction represents a single growth-model output for a pond.
// Never mutated after creation except for the Verified flag, which is set
// later from user feedback.
type Prediction struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PondID       uuid.UUID `db:"pond_id" json:"pond_id"`
	WeightKg     float64   `db:"weight_kg" json:"weight_kg"`
	LengthCm     float64   `db:"length_cm" json:"length_cm"`
	HarvestDate  time.Time `db:"harvest_date" json:"harvest_date"`
	Confidence   float64   `db:"confidence" json:"confidence"`
	ModelVersion string    `db:"model_version" json:"model_version"`
	Verified     bool      `db:"verified" json:"verified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
