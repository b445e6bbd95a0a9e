package port

import (
	"context"

	"github.com/carenow/queue-notify/internal/domain"
)

// EventPublisher emits the two trigger events of the pipeline: a queue
// position transition and a freshly created notification record.
type EventPublisher interface {
	PublishAdvance(ctx context.Context, advance domain.QueueAdvance) error
	PublishCreated(ctx context.Context, n *domain.Notification) error
	Close() error
}

type AdvanceHandler func(ctx context.Context, advance domain.QueueAdvance) error

type CreatedHandler func(ctx context.Context, notificationID string) error

// EventConsumer drives the evaluator and dispatcher from the broker.
// Delivery is at-least-once; handlers must tolerate replays.
type EventConsumer interface {
	Start(ctx context.Context, onAdvance AdvanceHandler, onCreated CreatedHandler) error
	Stop(ctx context.Context) error
}

// EventBroadcaster pushes live updates to connected clients (waiting-room
// displays, patient apps watching the queue).
type EventBroadcaster interface {
	BroadcastAdvance(queueKey string, position int)
	BroadcastDelivery(notificationID, status, timestamp string)
}
