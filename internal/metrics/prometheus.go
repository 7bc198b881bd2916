package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nereus_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nereus_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nereus_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nereus_predictions_total",
			Help: "Total number of prediction runs",
		},
		[]string{"status"}, // status: success|error
	)

	InferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nereus_inference_duration_seconds",
			Help:    "Model forward-pass duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	PredictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nereus_prediction_confidence",
			Help:    "Confidence score distribution of predictions",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95},
		},
	)

	// Ingest metrics
	ReadingsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nereus_readings_ingested_total",
			Help: "Total number of water-quality readings ingested",
		},
		[]string{"source", "status"}, // source: api|kafka, status: success|rejected|error
	)

	// Water-quality gauges per pond
	WaterQualityDO = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nereus_water_quality_do_mg_l",
			Help: "Latest rolling dissolved-oxygen average per pond",
		},
		[]string{"pond_id"},
	)

	WaterQualityDeviation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nereus_water_quality_deviation_index",
			Help: "Normalized deviation of dissolved oxygen from the optimal value",
		},
		[]string{"pond_id"},
	)

	// System metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nereus_kafka_messages_total",
			Help: "Total Kafka messages produced/consumed",
		},
		[]string{"topic", "direction", "status"}, // direction: produced|consumed
	)

	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nereus_websocket_clients",
			Help: "Current number of connected live-feed clients",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(Predictions)
	prometheus.MustRegister(InferenceDuration)
	prometheus.MustRegister(PredictionConfidence)

	prometheus.MustRegister(ReadingsIngested)
	prometheus.MustRegister(WaterQualityDO)
	prometheus.MustRegister(WaterQualityDeviation)

	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(WebSocketClients)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker run
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}
