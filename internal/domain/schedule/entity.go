package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Schedule represents a recurring daily feeding slot for a pond
type Schedule struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	PondID       uuid.UUID       `db:"pond_id" json:"pond_id"`
	FeedingTime  string          `db:"feeding_time" json:"feeding_time"` // "HH:MM", pond-local
	FeedAmountKg decimal.Decimal `db:"feed_amount_kg" json:"feed_amount_kg"`
	FeedType     string          `db:"feed_type" json:"feed_type"`
	Enabled      bool            `db:"enabled" json:"enabled"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Validate checks the schedule fields
func (s *Schedule) Validate() error {
	if _, err := s.TimeOfDay(); err != nil {
		return err
	}
	if s.FeedAmountKg.IsNegative() || s.FeedAmountKg.IsZero() {
		return fmt.Errorf("feed amount must be positive, got %s", s.FeedAmountKg)
	}
	return nil
}

// TimeOfDay parses FeedingTime into hour and minute
func (s *Schedule) TimeOfDay() (time.Duration, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s.FeedingTime, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid feeding time %q: %w", s.FeedingTime, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid feeding time %q", s.FeedingTime)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}

// NextOccurrence returns the next feeding instant at or after now
func (s *Schedule) NextOccurrence(now time.Time) (time.Time, error) {
	offset, err := s.TimeOfDay()
	if err != nil {
		return time.Time{}, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	next := midnight.Add(offset)
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
