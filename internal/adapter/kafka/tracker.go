// Package kafka publishes viewport bounds events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-map-viewer/internal/config"
	"github.com/couchcryptid/weather-map-viewer/internal/domain"
)

// Tracker produces bounds events to the configured topic.
// It implements domain.BoundsTracker.
type Tracker struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewTracker creates a Kafka producer for the bounds topic.
func NewTracker(cfg *config.Config, logger *slog.Logger) *Tracker {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.BoundsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Tracker{writer: w, logger: logger}
}

// TrackBounds serializes and publishes one bounds event.
func (t *Tracker) TrackBounds(ctx context.Context, event domain.BoundsEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return t.writer.WriteMessages(ctx, msg)
}

func (t *Tracker) Close() error {
	return t.writer.Close()
}

// serializeToMessage marshals a BoundsEvent into a Kafka message keyed by
// session, so one viewer's events stay ordered within a partition.
func serializeToMessage(event domain.BoundsEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize bounds event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "domain", Value: []byte(event.Domain)},
			{Key: "observed_at", Value: []byte(event.ObservedAt.Format(time.RFC3339))},
		},
	}, nil
}
