package kafka

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One producer is shared by the worker goroutines and the HTTP handlers, and
// the workers fire immediately on startup, so first-publishes to different
// topics race on the lazy writer map. Run with -race.
func TestProducer_ConcurrentGetWriter(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})
	defer p.Close()

	topics := []string{
		TopicSensorReadings,
		TopicPredictionCreated,
		TopicQualityAlert,
		TopicModelActivated,
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			w := p.getWriter(topic)
			assert.NotNil(t, w)
		}(topics[i%len(topics)])
	}
	wg.Wait()

	assert.Len(t, p.writers, len(topics))
}

func TestProducer_GetWriterReusesInstance(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})
	defer p.Close()

	first := p.getWriter(TopicSensorReadings)
	second := p.getWriter(TopicSensorReadings)
	require.Same(t, first, second)
	assert.Equal(t, TopicSensorReadings, first.Topic)
}
