package workers

import (
	"context"
	"math"
	"time"

	"github.com/markcheno/go-talib"

	"nereus/internal/adapters/kafka"
	"nereus/internal/domain/pond"
	"nereus/internal/domain/reading"
	"nereus/internal/metrics"
	"nereus/internal/ml/preprocess"
	"nereus/pkg/errors"
)

// alertDeviationThreshold is the normalized DO deviation above which a
// quality alert is emitted
const alertDeviationThreshold = 0.35

// AnalysisWorker computes rolling water-quality trend statistics for every
// active pond and publishes alerts when dissolved oxygen drifts too far
// from the optimal value.
type AnalysisWorker struct {
	*BaseWorker
	ponds     pond.Repository
	readings  reading.Repository
	stats     reading.StatsRepository
	producer  *kafka.Producer
	optimalDO float64
}

// QualityAlertEvent is published when water quality degrades past threshold
type QualityAlertEvent struct {
	PondID       string    `json:"pond_id"`
	DOMean7      float64   `json:"do_mean_7"`
	WQIDeviation float64   `json:"wqi_deviation"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewAnalysisWorker creates the water-quality analytics worker
func NewAnalysisWorker(
	ponds pond.Repository,
	readings reading.Repository,
	stats reading.StatsRepository,
	producer *kafka.Producer,
	optimalDO float64,
	interval time.Duration,
	enabled bool,
) *AnalysisWorker {
	return &AnalysisWorker{
		BaseWorker: NewBaseWorker("analysis", interval, enabled),
		ponds:      ponds,
		readings:   readings,
		stats:      stats,
		producer:   producer,
		optimalDO:  optimalDO,
	}
}

// Run executes one analysis cycle over all active ponds
func (w *AnalysisWorker) Run(ctx context.Context) error {
	ponds, err := w.ponds.GetActive(ctx)
	if err != nil {
		return errors.Wrap(err, "list active ponds")
	}

	for _, p := range ponds {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := w.analyzePond(ctx, p); err != nil {
			w.Log().Errorf("Analysis failed for pond %s: %v", p.ID, err)
		}
	}

	return nil
}

// analyzePond computes SMA/EMA trend lines over the recent DO and
// temperature series and persists a stats row
func (w *AnalysisWorker) analyzePond(ctx context.Context, p *pond.Pond) error {
	recent, err := w.readings.GetRecent(ctx, p.ID, preprocess.WindowSize)
	if err != nil {
		return errors.Wrap(err, "fetch recent readings")
	}
	if len(recent) == 0 {
		return nil
	}

	// talib expects chronological order; GetRecent returns newest-first
	doSeries := make([]float64, len(recent))
	tempSeries := make([]float64, len(recent))
	for i, r := range recent {
		j := len(recent) - 1 - i
		doSeries[j] = r.DissolvedOxygen
		tempSeries[j] = r.Temperature
	}

	period := len(recent)
	if period > preprocess.WindowSize {
		period = preprocess.WindowSize
	}

	doMean := lastValue(talib.Sma(doSeries, period))
	tempMean := lastValue(talib.Sma(tempSeries, period))

	doEMA := doMean
	tempEMA := tempMean
	if period >= 2 {
		doEMA = lastValue(talib.Ema(doSeries, period))
		tempEMA = lastValue(talib.Ema(tempSeries, period))
	}

	deviation := math.Abs(doMean-w.optimalDO) / w.optimalDO

	row := &reading.Stats{
		PondID:       p.ID,
		Timestamp:    time.Now().UTC(),
		DOMean7:      doMean,
		DOEMA7:       doEMA,
		TempMean7:    tempMean,
		TempEMA7:     tempEMA,
		WQIDeviation: deviation,
		SampleCount:  uint64(len(recent)),
	}

	if err := w.stats.InsertStats(ctx, row); err != nil {
		return errors.Wrap(err, "store stats")
	}

	pondLabel := p.ID.String()
	metrics.WaterQualityDO.WithLabelValues(pondLabel).Set(doMean)
	metrics.WaterQualityDeviation.WithLabelValues(pondLabel).Set(deviation)

	if deviation > alertDeviationThreshold {
		w.alert(ctx, row)
	}

	return nil
}

func (w *AnalysisWorker) alert(ctx context.Context, row *reading.Stats) {
	w.Log().Warnf("Water quality degraded for pond %s: DO mean %.2f, deviation %.2f",
		row.PondID, row.DOMean7, row.WQIDeviation)

	if w.producer == nil {
		return
	}

	event := QualityAlertEvent{
		PondID:       row.PondID.String(),
		DOMean7:      row.DOMean7,
		WQIDeviation: row.WQIDeviation,
		Timestamp:    row.Timestamp,
	}

	if err := w.producer.Publish(ctx, kafka.TopicQualityAlert, event.PondID, event); err != nil {
		w.Log().Errorf("Failed to publish quality alert for pond %s: %v", event.PondID, err)
	}
}

// lastValue returns the final element of a talib output series, which holds
// the indicator value for the most recent bar. NaN-leading warmup values are
// never the last element when period <= len(series).
func lastValue(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
