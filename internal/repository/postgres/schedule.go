package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"nereus/internal/domain/schedule"
	"nereus/pkg/errors"
)

// Compile-time check
var _ schedule.Repository = (*ScheduleRepository)(nil)

// ScheduleRepository implements schedule.Repository using sqlx
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new feeding schedule repository
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a new feeding schedule
func (r *ScheduleRepository) Create(ctx context.Context, s *schedule.Schedule) error {
	query := `
		INSERT INTO feeding_schedules (
			id, pond_id, feeding_time, feed_amount_kg, feed_type,
			enabled, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.PondID, s.FeedingTime, s.FeedAmountKg, s.FeedType,
		s.Enabled, s.CreatedAt, s.UpdatedAt,
	)

	return err
}

// GetByID retrieves a schedule by ID
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	var s schedule.Schedule

	query := `SELECT * FROM feeding_schedules WHERE id = $1`

	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "schedule %s", id)
		}
		return nil, err
	}

	return &s, nil
}

// GetByPond retrieves all schedules for a pond ordered by feeding time
func (r *ScheduleRepository) GetByPond(ctx context.Context, pondID uuid.UUID) ([]*schedule.Schedule, error) {
	var schedules []*schedule.Schedule

	query := `SELECT * FROM feeding_schedules WHERE pond_id = $1 ORDER BY feeding_time`

	err := r.db.SelectContext(ctx, &schedules, query, pondID)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

// GetEnabled retrieves all enabled schedules across all ponds
func (r *ScheduleRepository) GetEnabled(ctx context.Context) ([]*schedule.Schedule, error) {
	var schedules []*schedule.Schedule

	query := `SELECT * FROM feeding_schedules WHERE enabled = true ORDER BY feeding_time`

	err := r.db.SelectContext(ctx, &schedules, query)
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

// Update updates a schedule
func (r *ScheduleRepository) Update(ctx context.Context, s *schedule.Schedule) error {
	query := `
		UPDATE feeding_schedules SET
			feeding_time = $2,
			feed_amount_kg = $3,
			feed_type = $4,
			enabled = $5,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.FeedingTime, s.FeedAmountKg, s.FeedType, s.Enabled,
	)

	return err
}

// Delete deletes a schedule
func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM feeding_schedules WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
