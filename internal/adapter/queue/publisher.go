package queue

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/pkg/tracing"
)

const (
	topicQueueAdvanced       = "queue.advanced"
	topicNotificationCreated = "notifications.created"
)

// advancePayload is the wire form of a queue position transition. The
// message key is the queue key, so transitions for one queue stay ordered
// on one partition.
type advancePayload struct {
	QueueKey string            `json:"queue_key"`
	Before   int               `json:"before"`
	After    int               `json:"after"`
	Carrier  map[string]string `json:"carrier,omitempty"`
}

type createdPayload struct {
	NotificationID string            `json:"notification_id"`
	RecipientID    string            `json:"recipient_id"`
	Kind           string            `json:"kind"`
	Carrier        map[string]string `json:"carrier,omitempty"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (p *Producer) PublishAdvance(ctx context.Context, advance domain.QueueAdvance) error {
	ctx, span := tracing.Tracer().Start(ctx, "kafka.produce_advance")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", topicQueueAdvanced),
		attribute.String("messaging.operation.type", "publish"),
		attribute.String("queue.key", advance.QueueKey),
		attribute.Int("queue.after", advance.After),
	)

	payload := advancePayload{
		QueueKey: advance.QueueKey,
		Before:   advance.Before,
		After:    advance.After,
		Carrier:  propagateTraceContext(ctx),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topicQueueAdvanced,
		Key:   []byte(advance.QueueKey),
		Value: value,
	}); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	return nil
}

func (p *Producer) PublishCreated(ctx context.Context, n *domain.Notification) error {
	ctx, span := tracing.Tracer().Start(ctx, "kafka.produce_created")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", topicNotificationCreated),
		attribute.String("messaging.operation.type", "publish"),
		attribute.String("notification.id", n.ID.String()),
		attribute.String("notification.kind", string(n.Kind)),
	)

	payload := createdPayload{
		NotificationID: n.ID.String(),
		RecipientID:    n.RecipientID,
		Kind:           string(n.Kind),
		Carrier:        propagateTraceContext(ctx),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topicNotificationCreated,
		Key:   []byte(n.ID.String()),
		Value: value,
	}); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func propagateTraceContext(ctx context.Context) map[string]string {
	carrier := make(map[string]string)
	propagation.TraceContext{}.Inject(ctx, propagation.MapCarrier(carrier))
	return carrier
}
