package workers

import (
	"context"
	"time"

	"nereus/internal/adapters/kafka"
	"nereus/internal/domain/pond"
	"nereus/internal/domain/prediction"
	predictionsvc "nereus/internal/services/prediction"
	"nereus/pkg/errors"
)

// PredictionWorker periodically runs the growth prediction pipeline for
// every active pond. Per-pond failures are logged and skipped so that one
// pond with bad data never blocks the rest.
type PredictionWorker struct {
	*BaseWorker
	ponds    pond.Repository
	svc      *predictionsvc.Service
	producer *kafka.Producer
}

// PredictionCreatedEvent is published for each successful prediction
type PredictionCreatedEvent struct {
	PredictionID string    `json:"prediction_id"`
	PondID       string    `json:"pond_id"`
	WeightKg     float64   `json:"weight_kg"`
	LengthCm     float64   `json:"length_cm"`
	HarvestDate  time.Time `json:"harvest_date"`
	Confidence   float64   `json:"confidence"`
	ModelVersion string    `json:"model_version"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPredictionWorker creates the scheduled prediction worker.
// The producer may be nil; events are then skipped.
func NewPredictionWorker(
	ponds pond.Repository,
	svc *predictionsvc.Service,
	producer *kafka.Producer,
	interval time.Duration,
	enabled bool,
) *PredictionWorker {
	return &PredictionWorker{
		BaseWorker: NewBaseWorker("prediction", interval, enabled),
		ponds:      ponds,
		svc:        svc,
		producer:   producer,
	}
}

// Run executes one prediction cycle over all active ponds
func (w *PredictionWorker) Run(ctx context.Context) error {
	ponds, err := w.ponds.GetActive(ctx)
	if err != nil {
		return errors.Wrap(err, "list active ponds")
	}

	if len(ponds) == 0 {
		w.Log().Debug("No active ponds, skipping prediction cycle")
		return nil
	}

	var failed int
	for _, p := range ponds {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pred, err := w.svc.Predict(ctx, p)
		if err != nil {
			// Ponds without readings yet are expected, everything else is not
			if errors.Is(err, errors.ErrNoData) {
				w.Log().Debugf("Pond %s has no readings yet", p.ID)
				continue
			}
			failed++
			w.Log().Errorf("Prediction failed for pond %s: %v", p.ID, err)
			continue
		}

		w.publish(ctx, pred)
	}

	w.Log().Infof("Prediction cycle completed: %d ponds, %d failed", len(ponds), failed)

	if failed == len(ponds) && failed > 0 {
		return errors.Wrapf(errors.ErrInference, "all %d predictions failed", failed)
	}
	return nil
}

func (w *PredictionWorker) publish(ctx context.Context, pred *prediction.Prediction) {
	if w.producer == nil {
		return
	}

	event := PredictionCreatedEvent{
		PredictionID: pred.ID.String(),
		PondID:       pred.PondID.String(),
		WeightKg:     pred.WeightKg,
		LengthCm:     pred.LengthCm,
		HarvestDate:  pred.HarvestDate,
		Confidence:   pred.Confidence,
		ModelVersion: pred.ModelVersion,
		CreatedAt:    pred.CreatedAt,
	}

	if err := w.producer.Publish(ctx, kafka.TopicPredictionCreated, pred.PondID.String(), event); err != nil {
		w.Log().Errorf("Failed to publish prediction event for pond %s: %v", pred.PondID, err)
	}
}
