package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nereus/internal/domain/schedule"
	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// Service manages recurring feeding schedules for ponds
type Service struct {
	repo schedule.Repository
	log  *logger.Logger
}

// NewService creates the feeding schedule service
func NewService(repo schedule.Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("service", "schedule"),
	}
}

// Create validates and stores a new feeding schedule
func (s *Service) Create(ctx context.Context, sched *schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	if sched.ID == uuid.Nil {
		sched.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = now
	}
	sched.UpdatedAt = now

	return s.repo.Create(ctx, sched)
}

// Update validates and stores schedule changes
func (s *Service) Update(ctx context.Context, sched *schedule.Schedule) error {
	if err := sched.Validate(); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return s.repo.Update(ctx, sched)
}

// GetByPond returns all schedules for a pond
func (s *Service) GetByPond(ctx context.Context, pondID uuid.UUID) ([]*schedule.Schedule, error) {
	return s.repo.GetByPond(ctx, pondID)
}

// Delete removes a schedule
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// NextFeeding returns the enabled schedule with the earliest upcoming
// occurrence for a pond, along with that instant. Returns ErrNotFound when
// the pond has no enabled schedules.
func (s *Service) NextFeeding(ctx context.Context, pondID uuid.UUID, now time.Time) (*schedule.Schedule, time.Time, error) {
	schedules, err := s.repo.GetByPond(ctx, pondID)
	if err != nil {
		return nil, time.Time{}, err
	}

	var best *schedule.Schedule
	var bestAt time.Time

	for _, sched := range schedules {
		if !sched.Enabled {
			continue
		}
		at, err := sched.NextOccurrence(now)
		if err != nil {
			s.log.Warnf("Schedule %s has invalid feeding time %q", sched.ID, sched.FeedingTime)
			continue
		}
		if best == nil || at.Before(bestAt) {
			best = sched
			bestAt = at
		}
	}

	if best == nil {
		return nil, time.Time{}, errors.Wrapf(errors.ErrNotFound, "no enabled schedules for pond %s", pondID)
	}
	return best, bestAt, nil
}
