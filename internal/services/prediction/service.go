package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nereus/internal/domain/pond"
	"nereus/internal/domain/prediction"
	"nereus/internal/domain/reading"
	"nereus/internal/metrics"
	"nereus/internal/ml/preprocess"
	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// Inferencer runs one forward pass of the growth model.
// Satisfied by *ml.Engine; abstracted for testing without a model artifact.
type Inferencer interface {
	Infer(features []float64) (weightGrams, lengthCm float64, err error)
}

// Service runs the full prediction pipeline for a pond: fetch readings,
// preprocess, infer, derive harvest date and confidence, persist.
// Stateless per call; safe for concurrent use.
type Service struct {
	readings     reading.Repository
	predictions  prediction.Repository
	preprocessor *preprocess.Preprocessor
	engine       Inferencer
	growth       GrowthModel
	confidence   ConfidenceScorer
	modelVersion string
	log          *logger.Logger
}

// NewService wires the prediction pipeline. Growth model and confidence
// scorer fall back to the defaults when nil.
func NewService(
	readings reading.Repository,
	predictions prediction.Repository,
	preprocessor *preprocess.Preprocessor,
	engine Inferencer,
	growth GrowthModel,
	confidence ConfidenceScorer,
	modelVersion string,
) *Service {
	if growth == nil {
		growth = NewLinearGrowth(0)
	}
	if confidence == nil {
		confidence = NewVariabilityScorer()
	}
	return &Service{
		readings:     readings,
		predictions:  predictions,
		preprocessor: preprocessor,
		engine:       engine,
		growth:       growth,
		confidence:   confidence,
		modelVersion: modelVersion,
		log:          logger.Get().With("service", "prediction"),
	}
}

// Predict runs one prediction for a pond and persists the result.
// No partial result is ever stored or returned on failure.
func (s *Service) Predict(ctx context.Context, pnd *pond.Pond) (*prediction.Prediction, error) {
	if pnd == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "pond is nil")
	}

	recent, err := s.readings.GetRecent(ctx, pnd.ID, preprocess.WindowSize)
	if err != nil {
		return nil, errors.Wrap(err, "fetch recent readings")
	}
	if len(recent) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "pond %s", pnd.ID)
	}

	latest := &recent[0]
	history := recent[1:]

	vector, err := s.preprocessor.PrepareFeatures(latest, history, pnd)
	if err != nil {
		return nil, errors.Wrap(err, "prepare features")
	}

	// Residual non-finite values mean a configuration gap (a feature with no
	// imputation median); never feed them to the model
	if idx := preprocess.CheckFinite(vector); idx >= 0 {
		name := s.preprocessor.Config().Scaler.FeatureNames[idx]
		return nil, errors.Wrapf(errors.ErrInference, "non-finite value for feature %q", name)
	}

	start := time.Now()
	weightGrams, lengthCm, err := s.engine.Infer(vector)
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Predictions.WithLabelValues("error").Inc()
		return nil, err
	}

	// The model outputs grams; the product speaks kilograms
	weightKg := weightGrams / 1000.0

	target := pnd.Species.TargetHarvestWeightKg()
	harvestDate := s.growth.ProjectHarvestDate(weightKg, target, latest.RecordedAt)
	confidence := s.confidence.Score(recent)

	result := &prediction.Prediction{
		ID:           uuid.New(),
		PondID:       pnd.ID,
		WeightKg:     weightKg,
		LengthCm:     lengthCm,
		HarvestDate:  harvestDate,
		Confidence:   confidence,
		ModelVersion: s.modelVersion,
		Verified:     false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.predictions.Create(ctx, result); err != nil {
		metrics.Predictions.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "store prediction")
	}

	metrics.Predictions.WithLabelValues("success").Inc()
	metrics.PredictionConfidence.Observe(confidence)
	s.log.Debugf("Prediction for pond %s: %.3f kg, %.1f cm, harvest %s, confidence %.2f",
		pnd.ID, weightKg, lengthCm, harvestDate.Format("2006-01-02"), confidence)

	return result, nil
}

// Verify toggles the user-feedback flag on a stored prediction
func (s *Service) Verify(ctx context.Context, id uuid.UUID, verified bool) error {
	return s.predictions.SetVerified(ctx, id, verified)
}
