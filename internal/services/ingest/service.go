package ingest

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/google/uuid"

	"nereus/internal/adapters/kafka"
	"nereus/internal/domain/pond"
	"nereus/internal/domain/reading"
	"nereus/internal/metrics"
	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// Result summarizes one ingest batch: how many readings were stored and
// which were rejected with the reason
type Result struct {
	Accepted int        `json:"accepted"`
	Rejected []Rejected `json:"rejected,omitempty"`
}

// Rejected describes a single reading that failed validation
type Rejected struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Service validates and stores incoming water-quality readings.
// Readings arrive either through the mobile sync API or the sensor
// Kafka topic; both paths share the same validation.
type Service struct {
	readings reading.Repository
	ponds    pond.Repository
	log      *logger.Logger
}

// NewService creates the ingest service
func NewService(readings reading.Repository, ponds pond.Repository) *Service {
	return &Service{
		readings: readings,
		ponds:    ponds,
		log:      logger.Get().With("service", "ingest"),
	}
}

// Ingest validates a batch and stores the valid readings. Invalid readings
// are reported back per-index; the valid remainder is still persisted.
func (s *Service) Ingest(ctx context.Context, pondID uuid.UUID, batch []reading.Reading, source string) (*Result, error) {
	if len(batch) == 0 {
		return &Result{}, nil
	}

	if _, err := s.ponds.GetByID(ctx, pondID); err != nil {
		return nil, err
	}

	result := &Result{}
	valid := make([]reading.Reading, 0, len(batch))
	now := time.Now().UTC()

	for i := range batch {
		rd := &batch[i]
		rd.PondID = pondID

		if err := rd.Validate(); err != nil {
			result.Rejected = append(result.Rejected, Rejected{Index: i, Reason: err.Error()})
			metrics.ReadingsIngested.WithLabelValues(source, "rejected").Inc()
			continue
		}

		if rd.ID == uuid.Nil {
			rd.ID = uuid.New()
		}
		if rd.RecordedAt.IsZero() {
			rd.RecordedAt = now
		}
		rd.CreatedAt = now

		valid = append(valid, *rd)
	}

	if len(valid) > 0 {
		if err := s.readings.Insert(ctx, valid); err != nil {
			metrics.ReadingsIngested.WithLabelValues(source, "error").Add(float64(len(valid)))
			return nil, errors.Wrap(err, "store readings")
		}
		metrics.ReadingsIngested.WithLabelValues(source, "success").Add(float64(len(valid)))
	}

	result.Accepted = len(valid)
	s.log.Debugf("Ingested %d readings for pond %s (%d rejected, source %s)",
		result.Accepted, pondID, len(result.Rejected), source)

	return result, nil
}

// sensorMessage is the payload on the sensor readings topic
type sensorMessage struct {
	PondID   uuid.UUID         `json:"pond_id"`
	Readings []reading.Reading `json:"readings"`
}

// HandleSensorMessage processes one message from the sensor readings topic
func (s *Service) HandleSensorMessage(ctx context.Context, msg kafkago.Message) error {
	var payload sensorMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		metrics.KafkaMessages.WithLabelValues(kafka.TopicSensorReadings, "consumed", "error").Inc()
		return errors.Wrap(errors.ErrInvalidInput, "malformed sensor message")
	}

	_, err := s.Ingest(ctx, payload.PondID, payload.Readings, "kafka")
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.KafkaMessages.WithLabelValues(kafka.TopicSensorReadings, "consumed", status).Inc()
	return err
}
