//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-map-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/weather-map-viewer/internal/config"
	"github.com/couchcryptid/weather-map-viewer/internal/domain"
)

const testBoundsTopic = "test-viewer-bounds"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-broker Kafka container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestTrackerPublishesBoundsEvents verifies the Kafka tracker end to end:
// events published through the tracker arrive on the bounds topic keyed by
// session with the expected headers and payload.
func TestTrackerPublishesBoundsEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testBoundsTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		BoundsTopic:  testBoundsTopic,
	}

	tracker := kafka.NewTracker(cfg, discardLogger())
	t.Cleanup(func() { _ = tracker.Close() })

	observedAt := time.Date(2024, time.May, 1, 6, 20, 0, 0, time.UTC)
	events := []domain.BoundsEvent{
		{
			SessionID:  "v-aaaa0001",
			Domain:     "dwd_icon_d2",
			Variable:   "temperature_2m",
			Bounds:     domain.Bounds{West: 5.9, South: 47.3, East: 15.0, North: 55.1},
			ObservedAt: observedAt,
		},
		{
			SessionID:  "v-aaaa0001",
			Domain:     "dwd_icon_d2",
			Variable:   "temperature_2m",
			Bounds:     domain.Bounds{West: 6.1, South: 47.5, East: 15.2, North: 55.3},
			ObservedAt: observedAt.Add(5 * time.Second),
		},
		{
			SessionID:  "v-bbbb0002",
			Domain:     "gfs_global",
			Variable:   "cape",
			Bounds:     domain.Bounds{West: -130, South: 20, East: -60, North: 55},
			ObservedAt: observedAt.Add(10 * time.Second),
		},
	}
	for _, ev := range events {
		require.NoError(t, tracker.TrackBounds(ctx, ev))
	}

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testBoundsTopic,
		GroupID:     fmt.Sprintf("test-bounds-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]kafkago.Message, 0, len(events))
	for len(received) < len(events) {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from bounds topic")
		received = append(received, msg)
	}

	// Single partition, so publish order is preserved.
	for i, msg := range received {
		want := events[i]

		assert.Equal(t, []byte(want.SessionID), msg.Key)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, want.Domain, headers["domain"])
		observed, err := time.Parse(time.RFC3339, headers["observed_at"])
		require.NoError(t, err, "observed_at should be valid RFC3339")
		assert.True(t, observed.Equal(want.ObservedAt))

		var decoded domain.BoundsEvent
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, want.SessionID, decoded.SessionID)
		assert.Equal(t, want.Variable, decoded.Variable)
		assert.Equal(t, want.Bounds, decoded.Bounds)
	}

	// No stray fourth message.
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected exactly %d messages on bounds topic", len(events))
}
