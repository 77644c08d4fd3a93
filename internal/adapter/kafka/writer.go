// Package kafka publishes finished trip summaries to an optional sink topic.
// The flat files remain the system of record; the topic exists so downstream
// consumers can subscribe to summaries without re-reading CSVs.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
)

// Writer produces trip-summary messages. It implements pipeline.SummaryPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the summary topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSummaries serializes and publishes all summaries in a single
// WriteMessages call.
func (w *Writer) PublishSummaries(ctx context.Context, summaries []domain.TripSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a TripSummary into a Kafka message keyed by
// trip identifier.
func serializeToMessage(summary domain.TripSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize trip summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.TripID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "trip_count", Value: []byte(fmt.Sprintf("%d", summary.TripCount))},
			{Key: "processed_at", Value: []byte(domain.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
