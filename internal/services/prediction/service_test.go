package prediction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nereus/internal/domain/pond"
	"nereus/internal/domain/prediction"
	"nereus/internal/domain/reading"
	"nereus/internal/ml/preprocess"
	"nereus/pkg/errors"
)

const serviceTestConfig = `{
	"scaler": {
		"feature_names": [
			"temperature", "ph", "dissolved_oxygen", "ammonia", "nitrate", "turbidity",
			"days_in_farm", "day_of_year", "hour", "sin_hour", "cos_hour",
			"temp_do_interaction", "avg_do_7d", "avg_wqi_7d"
		],
		"center": [0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0],
		"scale":  [1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1]
	},
	"imputation_medians": {"temperature": 28.0},
	"biological_limits": {"temperature": [0, 40], "ph": [4, 11]},
	"constants": {"optimal_do": 6.0, "initial_day_offset": 30},
	"target_columns": ["fish_weight", "fish_length"]
}`

// stubEngine returns fixed model outputs
type stubEngine struct {
	weightGrams float64
	lengthCm    float64
	err         error
	lastInput   []float64
}

func (s *stubEngine) Infer(features []float64) (float64, float64, error) {
	s.lastInput = features
	return s.weightGrams, s.lengthCm, s.err
}

// fakeReadingRepo serves a canned recent window
type fakeReadingRepo struct {
	recent []reading.Reading
	err    error
}

func (f *fakeReadingRepo) Insert(ctx context.Context, readings []reading.Reading) error { return nil }

func (f *fakeReadingRepo) GetLatest(ctx context.Context, pondID uuid.UUID) (*reading.Reading, error) {
	if len(f.recent) == 0 {
		return nil, errors.ErrNoData
	}
	return &f.recent[0], nil
}

func (f *fakeReadingRepo) GetRecent(ctx context.Context, pondID uuid.UUID, limit int) ([]reading.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.recent) {
		limit = len(f.recent)
	}
	return f.recent[:limit], nil
}

func (f *fakeReadingRepo) GetRange(ctx context.Context, pondID uuid.UUID, from, to time.Time) ([]reading.Reading, error) {
	return f.recent, nil
}

// fakePredictionRepo captures stored predictions
type fakePredictionRepo struct {
	stored   []*prediction.Prediction
	verified map[uuid.UUID]bool
	err      error
}

func newFakePredictionRepo() *fakePredictionRepo {
	return &fakePredictionRepo{verified: make(map[uuid.UUID]bool)}
}

func (f *fakePredictionRepo) Create(ctx context.Context, p *prediction.Prediction) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, p)
	return nil
}

func (f *fakePredictionRepo) GetByID(ctx context.Context, id uuid.UUID) (*prediction.Prediction, error) {
	return nil, errors.ErrNotFound
}

func (f *fakePredictionRepo) GetByPond(ctx context.Context, pondID uuid.UUID, limit int) ([]*prediction.Prediction, error) {
	return f.stored, nil
}

func (f *fakePredictionRepo) GetLatest(ctx context.Context, pondID uuid.UUID) (*prediction.Prediction, error) {
	if len(f.stored) == 0 {
		return nil, errors.ErrNotFound
	}
	return f.stored[len(f.stored)-1], nil
}

func (f *fakePredictionRepo) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	f.verified[id] = verified
	return nil
}

func servicePond() *pond.Pond {
	return &pond.Pond{
		ID:         uuid.New(),
		Name:       "Service Test Pond",
		Species:    pond.SpeciesTilapia,
		StockCount: 1000,
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}
}

func serviceReadings(n int) []reading.Reading {
	base := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	out := make([]reading.Reading, n)
	for i := 0; i < n; i++ {
		out[i] = reading.Reading{
			ID:              uuid.New(),
			Temperature:     28.0,
			PH:              7.2,
			DissolvedOxygen: 6.5,
			Ammonia:         0.3,
			Nitrate:         12.0,
			Turbidity:       40.0,
			RecordedAt:      base.Add(-time.Duration(i) * 24 * time.Hour),
		}
	}
	return out
}

func newTestService(t *testing.T, readings *fakeReadingRepo, preds *fakePredictionRepo, engine Inferencer) *Service {
	t.Helper()

	cfg, err := preprocess.Parse([]byte(serviceTestConfig))
	require.NoError(t, err)

	return NewService(readings, preds, preprocess.New(cfg), engine, nil, nil, "1.0.0")
}

func TestService_Predict_Success(t *testing.T) {
	engine := &stubEngine{weightGrams: 412.0, lengthCm: 24.8}
	preds := newFakePredictionRepo()
	svc := newTestService(t, &fakeReadingRepo{recent: serviceReadings(7)}, preds, engine)

	pnd := servicePond()
	result, err := svc.Predict(context.Background(), pnd)
	require.NoError(t, err)

	// Gram output converted to kilograms
	assert.InDelta(t, 0.412, result.WeightKg, 1e-9)
	assert.InDelta(t, 24.8, result.LengthCm, 1e-9)
	assert.Equal(t, pnd.ID, result.PondID)
	assert.Equal(t, "1.0.0", result.ModelVersion)
	assert.False(t, result.Verified)

	// Model received the full feature vector
	assert.Len(t, engine.lastInput, 14)

	// Persisted exactly once
	require.Len(t, preds.stored, 1)
	assert.Equal(t, result.ID, preds.stored[0].ID)
}

func TestService_Predict_HarvestDateFromReadingTime(t *testing.T) {
	engine := &stubEngine{weightGrams: 400.0, lengthCm: 24.0}
	readings := serviceReadings(7)
	svc := newTestService(t, &fakeReadingRepo{recent: readings}, newFakePredictionRepo(), engine)

	result, err := svc.Predict(context.Background(), servicePond())
	require.NoError(t, err)

	// Tilapia target 0.5 kg, current 0.4 kg, 5 g/day default: 20 days
	// anchored on the latest reading timestamp, not wall clock
	want := readings[0].RecordedAt.AddDate(0, 0, 20)
	assert.Equal(t, want, result.HarvestDate)
}

func TestService_Predict_TargetMetHarvestNow(t *testing.T) {
	engine := &stubEngine{weightGrams: 600.0, lengthCm: 30.0}
	readings := serviceReadings(7)
	svc := newTestService(t, &fakeReadingRepo{recent: readings}, newFakePredictionRepo(), engine)

	result, err := svc.Predict(context.Background(), servicePond())
	require.NoError(t, err)

	// Already above the 0.5 kg tilapia target
	assert.Equal(t, readings[0].RecordedAt, result.HarvestDate)
}

func TestService_Predict_NoReadings(t *testing.T) {
	svc := newTestService(t, &fakeReadingRepo{}, newFakePredictionRepo(), &stubEngine{})

	_, err := svc.Predict(context.Background(), servicePond())
	assert.True(t, errors.Is(err, errors.ErrNoData))
}

func TestService_Predict_EngineFailure(t *testing.T) {
	engine := &stubEngine{err: errors.Wrap(errors.ErrInference, "session crashed")}
	preds := newFakePredictionRepo()
	svc := newTestService(t, &fakeReadingRepo{recent: serviceReadings(3)}, preds, engine)

	_, err := svc.Predict(context.Background(), servicePond())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInference))

	// Nothing persisted on failure
	assert.Empty(t, preds.stored)
}

func TestService_Predict_StorageFailure(t *testing.T) {
	preds := newFakePredictionRepo()
	preds.err = errors.New("postgres down")
	svc := newTestService(t, &fakeReadingRepo{recent: serviceReadings(3)}, preds, &stubEngine{weightGrams: 400, lengthCm: 24})

	_, err := svc.Predict(context.Background(), servicePond())
	assert.Error(t, err)
}

func TestService_Predict_NilPond(t *testing.T) {
	svc := newTestService(t, &fakeReadingRepo{}, newFakePredictionRepo(), &stubEngine{})

	_, err := svc.Predict(context.Background(), nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestService_Verify(t *testing.T) {
	preds := newFakePredictionRepo()
	svc := newTestService(t, &fakeReadingRepo{}, preds, &stubEngine{})

	id := uuid.New()
	require.NoError(t, svc.Verify(context.Background(), id, true))
	assert.True(t, preds.verified[id])
}
