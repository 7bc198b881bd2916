package pond

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Species identifies the cultured fish species
// It affects the target harvest weight used for harvest-date projection,
// not the preprocessing pipeline itself
type Species string

const (
	SpeciesTilapia  Species = "tilapia"
	SpeciesCatfish  Species = "catfish"
	SpeciesCarp     Species = "carp"
	SpeciesMilkfish Species = "milkfish"
)

// Valid reports whether the species is a known value
func (s Species) Valid() bool {
	switch s {
	case SpeciesTilapia, SpeciesCatfish, SpeciesCarp, SpeciesMilkfish:
		return true
	}
	return false
}

// TargetHarvestWeightKg returns the market harvest weight for the species
func (s Species) TargetHarvestWeightKg() float64 {
	switch s {
	case SpeciesTilapia:
		return 0.5
	case SpeciesCatfish:
		return 1.0
	case SpeciesCarp:
		return 1.5
	case SpeciesMilkfish:
		return 0.4
	default:
		return 0.5
	}
}

// Pond represents a single cultured pond
type Pond struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Name       string    `db:"name" json:"name"`
	Species    Species   `db:"species" json:"species"`
	StockCount int       `db:"stock_count" json:"stock_count"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DaysInFarm returns whole days elapsed between the pond start date and at
func (p *Pond) DaysInFarm(at time.Time) float64 {
	return math.Floor(at.Sub(p.StartDate).Hours() / 24)
}
