package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"nereus/internal/domain/reading"
	"nereus/pkg/errors"
)

// Compile-time check
var _ reading.Repository = (*ReadingRepository)(nil)

// ReadingRepository implements reading.Repository using ClickHouse
type ReadingRepository struct {
	conn driver.Conn
}

// NewReadingRepository creates a new reading repository
func NewReadingRepository(conn driver.Conn) *ReadingRepository {
	return &ReadingRepository{conn: conn}
}

// Insert stores readings in batch
func (r *ReadingRepository) Insert(ctx context.Context, readings []reading.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO readings (
			id, pond_id, temperature, ph, dissolved_oxygen,
			ammonia, nitrate, turbidity,
			fish_weight_kg, fish_length_cm,
			recorded_at, device_id, created_at
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, rd := range readings {
		err := batch.Append(
			rd.ID, rd.PondID, rd.Temperature, rd.PH, rd.DissolvedOxygen,
			rd.Ammonia, rd.Nitrate, rd.Turbidity,
			rd.FishWeightKg, rd.FishLengthCm,
			rd.RecordedAt, rd.DeviceID, rd.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append reading")
		}
	}

	return batch.Send()
}

// GetLatest returns the most recent reading for a pond
func (r *ReadingRepository) GetLatest(ctx context.Context, pondID uuid.UUID) (*reading.Reading, error) {
	var rd reading.Reading

	query := `
		SELECT * FROM readings
		WHERE pond_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`

	err := r.conn.QueryRow(ctx, query, pondID).ScanStruct(&rd)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNoData, "pond %s: %v", pondID, err)
	}

	return &rd, nil
}

// GetRecent returns up to limit most recent readings, newest first
func (r *ReadingRepository) GetRecent(ctx context.Context, pondID uuid.UUID, limit int) ([]reading.Reading, error) {
	var readings []reading.Reading

	query := `
		SELECT * FROM readings
		WHERE pond_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`

	err := r.conn.Select(ctx, &readings, query, pondID, limit)
	return readings, err
}

// GetRange returns readings within [from, to), newest first
func (r *ReadingRepository) GetRange(ctx context.Context, pondID uuid.UUID, from, to time.Time) ([]reading.Reading, error) {
	var readings []reading.Reading

	query := `
		SELECT * FROM readings
		WHERE pond_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at DESC`

	err := r.conn.Select(ctx, &readings, query, pondID, from, to)
	return readings, err
}
