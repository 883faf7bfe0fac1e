package producer

import (
	"context"

	"masar-finance/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafkago.Writer the worker needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Events are keyed by organization so one tenant's audit trail stays ordered
// within a partition.
func publishEvent(ctx context.Context, writer MessageWriter, event kafka.OutboxEvent) error {
	key := event.OrganizationID
	if key == "" {
		key = event.AggregateID
	}

	msg := kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(key),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "aggregate_id", Value: []byte(event.AggregateID)},
		},
	}
	if event.RequestID != "" {
		msg.Headers = append(msg.Headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	return writer.WriteMessages(ctx, msg)
}
