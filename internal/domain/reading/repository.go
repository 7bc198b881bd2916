package reading

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for reading time-series access (ClickHouse)
type Repository interface {
	// Insert stores readings in batch
	Insert(ctx context.Context, readings []Reading) error

	// GetLatest returns the most recent reading for a pond, or ErrNoData
	GetLatest(ctx context.Context, pondID uuid.UUID) (*Reading, error)

	// GetRecent returns up to limit most recent readings, ordered newest-first
	GetRecent(ctx context.Context, pondID uuid.UUID, limit int) ([]Reading, error)

	// GetRange returns readings within [from, to), ordered newest-first
	GetRange(ctx context.Context, pondID uuid.UUID, from, to time.Time) ([]Reading, error)
}

// StatsRepository stores derived water-quality statistics (ClickHouse)
type StatsRepository interface {
	InsertStats(ctx context.Context, stats *Stats) error
	GetLatestStats(ctx context.Context, pondID uuid.UUID) (*Stats, error)
}

// Stats holds rolling water-quality trend statistics for a pond
type Stats struct {
	PondID        uuid.UUID `ch:"pond_id" json:"pond_id"`
	Timestamp     time.Time `ch:"timestamp" json:"timestamp"`
	DOMean7       float64   `ch:"do_mean_7" json:"do_mean_7"`
	DOEMA7        float64   `ch:"do_ema_7" json:"do_ema_7"`
	TempMean7     float64   `ch:"temp_mean_7" json:"temp_mean_7"`
	TempEMA7      float64   `ch:"temp_ema_7" json:"temp_ema_7"`
	WQIDeviation  float64   `ch:"wqi_deviation" json:"wqi_deviation"`
	SampleCount   uint64    `ch:"sample_count" json:"sample_count"`
}
