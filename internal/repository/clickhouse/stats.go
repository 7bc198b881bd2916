package clickhouse

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"nereus/internal/domain/reading"
	"nereus/pkg/errors"
)

// Compile-time check
var _ reading.StatsRepository = (*StatsRepository)(nil)

// StatsRepository stores derived water-quality statistics in ClickHouse
type StatsRepository struct {
	conn driver.Conn
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(conn driver.Conn) *StatsRepository {
	return &StatsRepository{conn: conn}
}

// InsertStats stores one statistics row
func (r *StatsRepository) InsertStats(ctx context.Context, stats *reading.Stats) error {
	query := `
		INSERT INTO water_quality_stats (
			pond_id, timestamp, do_mean_7, do_ema_7,
			temp_mean_7, temp_ema_7, wqi_deviation, sample_count
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	return r.conn.Exec(ctx, query,
		stats.PondID, stats.Timestamp, stats.DOMean7, stats.DOEMA7,
		stats.TempMean7, stats.TempEMA7, stats.WQIDeviation, stats.SampleCount,
	)
}

// GetLatestStats returns the most recent statistics row for a pond
func (r *StatsRepository) GetLatestStats(ctx context.Context, pondID uuid.UUID) (*reading.Stats, error) {
	var stats reading.Stats

	query := `
		SELECT * FROM water_quality_stats
		WHERE pond_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`

	err := r.conn.QueryRow(ctx, query, pondID).ScanStruct(&stats)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNoData, "pond %s: %v", pondID, err)
	}

	return &stats, nil
}
