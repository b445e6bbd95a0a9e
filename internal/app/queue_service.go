package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
	"github.com/carenow/queue-notify/pkg/tracing"
)

// QueueService applies externally requested queue mutations and publishes
// the resulting transition for the evaluator to consume.
type QueueService struct {
	queues      port.QueueDirectory
	publisher   port.EventPublisher
	broadcaster port.EventBroadcaster
	logger      *zap.Logger
}

func NewQueueService(
	queues port.QueueDirectory,
	publisher port.EventPublisher,
	broadcaster port.EventBroadcaster,
	logger *zap.Logger,
) *QueueService {
	return &QueueService{
		queues:      queues,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *QueueService) GetState(ctx context.Context, key string) (*domain.QueueState, error) {
	return s.queues.GetQueueState(ctx, key)
}

// Advance moves the queue to the given position. The transition event is
// published after the durable update; if publishing fails the caller gets
// the error and may re-issue the advance, which the directory will reject
// as stale, so the API surface stays idempotent.
func (s *QueueService) Advance(ctx context.Context, key string, to int) (*domain.QueueAdvance, error) {
	ctx, span := tracing.Tracer().Start(ctx, "queue.advance")
	defer span.End()

	span.SetAttributes(
		attribute.String("queue.key", key),
		attribute.Int("queue.target", to),
	)

	advance, err := s.queues.Advance(ctx, key, to)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if err := s.publisher.PublishAdvance(ctx, *advance); err != nil {
		tracing.RecordError(span, err)
		s.logger.Error("failed to publish queue advance",
			zap.String("queue_key", key),
			zap.Int("after", advance.After),
			zap.Error(err),
		)
		return nil, err
	}

	s.broadcaster.BroadcastAdvance(key, advance.After)

	s.logger.Info("queue advanced",
		zap.String("queue_key", key),
		zap.Int("before", advance.Before),
		zap.Int("after", advance.After),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return advance, nil
}
