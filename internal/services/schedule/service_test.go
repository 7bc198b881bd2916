package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nereus/internal/domain/schedule"
	"nereus/pkg/errors"
)

// fakeRepo is an in-memory schedule.Repository
type fakeRepo struct {
	schedules map[uuid.UUID]*schedule.Schedule
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{schedules: make(map[uuid.UUID]*schedule.Schedule)}
}

func (f *fakeRepo) Create(ctx context.Context, s *schedule.Schedule) error {
	f.schedules[s.ID] = s
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*schedule.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "schedule %s", id)
	}
	return s, nil
}

func (f *fakeRepo) GetByPond(ctx context.Context, pondID uuid.UUID) ([]*schedule.Schedule, error) {
	var out []*schedule.Schedule
	for _, s := range f.schedules {
		if s.PondID == pondID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetEnabled(ctx context.Context) ([]*schedule.Schedule, error) {
	var out []*schedule.Schedule
	for _, s := range f.schedules {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, s *schedule.Schedule) error {
	f.schedules[s.ID] = s
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.schedules, id)
	return nil
}

func testSchedule(pondID uuid.UUID, feedingTime string, enabled bool) *schedule.Schedule {
	return &schedule.Schedule{
		ID:           uuid.New(),
		PondID:       pondID,
		FeedingTime:  feedingTime,
		FeedAmountKg: decimal.NewFromFloat(2.5),
		FeedType:     "pellets",
		Enabled:      enabled,
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	// Valid
	require.NoError(t, svc.Create(ctx, testSchedule(uuid.New(), "08:30", true)))

	// Bad time
	err := svc.Create(ctx, testSchedule(uuid.New(), "25:00", true))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	// Zero amount
	bad := testSchedule(uuid.New(), "08:30", true)
	bad.FeedAmountKg = decimal.Zero
	err = svc.Create(ctx, bad)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestService_NextFeeding(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()
	pondID := uuid.New()

	morning := testSchedule(pondID, "08:00", true)
	evening := testSchedule(pondID, "18:00", true)
	disabled := testSchedule(pondID, "12:00", false)
	repo.schedules[morning.ID] = morning
	repo.schedules[evening.ID] = evening
	repo.schedules[disabled.ID] = disabled

	// Mid-morning: evening slot is next; the disabled noon slot is skipped
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	best, at, err := svc.NextFeeding(ctx, pondID, now)
	require.NoError(t, err)
	assert.Equal(t, evening.ID, best.ID)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), at)

	// Late night: wraps to next morning
	now = time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	best, at, err = svc.NextFeeding(ctx, pondID, now)
	require.NoError(t, err)
	assert.Equal(t, morning.ID, best.ID)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), at)
}

func TestService_NextFeeding_NoSchedules(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, _, err := svc.NextFeeding(context.Background(), uuid.New(), time.Now())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
