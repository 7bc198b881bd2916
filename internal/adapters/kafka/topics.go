package kafka

// Topic definitions for Kafka event streaming
const (
	// Sensor ingest: raw water-quality readings from IoT gateways
	TopicSensorReadings = "sensor.readings"

	// Prediction events
	TopicPredictionCreated = "predictions.created"

	// Water-quality events
	TopicQualityAlert = "quality.alerts"

	// Model distribution events
	TopicModelActivated = "models.activated"
)
