package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/heatwatch/hi-forecast/internal/domain"
	"github.com/heatwatch/hi-forecast/internal/pipeline"
)

// Publisher produces finished forecast batches to a Kafka topic, one message
// per station entry. Publication is an optional side channel: a publish
// failure never invalidates the invocation's primary result.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the forecast topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes and publishes every forecast in the batch in a
// single WriteMessages call.
func (p *Publisher) PublishBatch(ctx context.Context, result *pipeline.Result) error {
	if len(result.Forecasts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(result.Forecasts))
	for i, forecast := range result.Forecasts {
		msg, err := serializeToMessage(result.BaseDate, forecast)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish forecast batch: %w", err)
	}
	p.logger.Info("forecast batch published",
		"topic", p.writer.Topic, "messages", len(msgs))
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals one forecast entry, keyed by station id so a
// station's forecasts land in one partition in order.
func serializeToMessage(baseDate time.Time, forecast domain.Forecast) (kafkago.Message, error) {
	data, err := json.Marshal(forecast)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(forecast.StationID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "base_date", Value: []byte(baseDate.Format("2006-01-02"))},
			{Key: "published_at", Value: []byte(domain.Now().Format(time.RFC3339))},
		},
	}, nil
}
