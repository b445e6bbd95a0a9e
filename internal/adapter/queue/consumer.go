package queue

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
	"github.com/carenow/queue-notify/pkg/tracing"
)

type ConsumerConfig struct {
	Brokers      []string
	Group        string
	DispatchRate int
	Logger       *zap.Logger
}

// Consumer drives the two halves of the pipeline from the broker: queue
// transitions feed the evaluator, created records feed the dispatcher.
// Handler errors are re-enqueued for another attempt; dedup keys and
// terminal statuses downstream make the replays harmless.
type Consumer struct {
	cfg     ConsumerConfig
	readers []*kafka.Reader
	writer  *kafka.Writer
	limiter *rate.Limiter
	logger  *zap.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.DispatchRate <= 0 {
		cfg.DispatchRate = 100
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Consumer{
		cfg:     cfg,
		writer:  writer,
		limiter: rate.NewLimiter(rate.Limit(cfg.DispatchRate), cfg.DispatchRate),
		logger:  cfg.Logger,
	}
}

func (c *Consumer) Start(ctx context.Context, onAdvance port.AdvanceHandler, onCreated port.CreatedHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	advanceReader := c.newReader(topicQueueAdvanced)
	createdReader := c.newReader(topicNotificationCreated)
	c.readers = append(c.readers, advanceReader, createdReader)

	c.wg.Add(2)
	go c.consumeAdvances(ctx, advanceReader, onAdvance)
	go c.consumeCreated(ctx, createdReader, onCreated)

	c.logger.Info("kafka consumer started",
		zap.Strings("brokers", c.cfg.Brokers),
		zap.String("group", c.cfg.Group),
	)

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) Stop(_ context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var firstErr error
	for _, r := range c.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Consumer) newReader(topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.cfg.Brokers,
		Topic:          topic,
		GroupID:        c.cfg.Group,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
}

func (c *Consumer) consumeAdvances(ctx context.Context, reader *kafka.Reader, handler port.AdvanceHandler) {
	defer c.wg.Done()

	for {
		msg, ok := c.fetch(ctx, reader)
		if !ok {
			return
		}

		var payload advancePayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			c.logger.Error("unmarshal advance payload failed",
				zap.String("topic", msg.Topic),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx, span := c.startConsumeSpan(ctx, msg, payload.Carrier)
		span.SetAttributes(
			attribute.String("queue.key", payload.QueueKey),
			attribute.Int("queue.after", payload.After),
		)

		advance := domain.QueueAdvance{
			QueueKey: payload.QueueKey,
			Before:   payload.Before,
			After:    payload.After,
		}

		if err := handler(msgCtx, advance); err != nil {
			tracing.RecordError(span, err)
			span.End()
			c.logger.Warn("advance evaluation failed, re-enqueueing",
				zap.String("queue_key", payload.QueueKey),
				zap.Int("after", payload.After),
				zap.Error(err),
			)
			c.retry(ctx, msg)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		span.End()
		_ = reader.CommitMessages(ctx, msg)
	}
}

func (c *Consumer) consumeCreated(ctx context.Context, reader *kafka.Reader, handler port.CreatedHandler) {
	defer c.wg.Done()

	for {
		msg, ok := c.fetch(ctx, reader)
		if !ok {
			return
		}

		var payload createdPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			c.logger.Error("unmarshal created payload failed",
				zap.String("topic", msg.Topic),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx, span := c.startConsumeSpan(ctx, msg, payload.Carrier)
		span.SetAttributes(
			attribute.String("notification.id", payload.NotificationID),
			attribute.String("notification.kind", payload.Kind),
		)

		_ = c.limiter.Wait(msgCtx)

		if err := handler(msgCtx, payload.NotificationID); err != nil {
			tracing.RecordError(span, err)
			span.End()
			c.logger.Warn("dispatch failed, re-enqueueing",
				zap.String("notification_id", payload.NotificationID),
				zap.Error(err),
			)
			c.retry(ctx, msg)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		span.End()
		_ = reader.CommitMessages(ctx, msg)
	}
}

func (c *Consumer) fetch(ctx context.Context, reader *kafka.Reader) (kafka.Message, bool) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return kafka.Message{}, false
			}
			c.logger.Error("fetch message failed",
				zap.String("topic", reader.Config().Topic),
				zap.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}
		return msg, true
	}
}

func (c *Consumer) startConsumeSpan(ctx context.Context, msg kafka.Message, carrier map[string]string) (context.Context, trace.Span) {
	msgCtx := ctx
	if len(carrier) > 0 {
		msgCtx = propagation.TraceContext{}.Extract(ctx, propagation.MapCarrier(carrier))
	}

	msgCtx, span := tracing.Tracer().Start(msgCtx, "kafka.consume")
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.source.name", msg.Topic),
		attribute.String("messaging.operation.type", "receive"),
		attribute.String("messaging.consumer.group.id", c.cfg.Group),
		attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		attribute.Int("messaging.kafka.destination.partition", msg.Partition),
	)
	return msgCtx, span
}

func (c *Consumer) retry(ctx context.Context, original kafka.Message) {
	time.Sleep(retryDelay())

	if err := c.writer.WriteMessages(ctx, kafka.Message{
		Topic: original.Topic,
		Key:   original.Key,
		Value: original.Value,
	}); err != nil {
		c.logger.Error("retry re-enqueue failed",
			zap.String("topic", original.Topic),
			zap.Error(err),
		)
	}
}

func retryDelay() time.Duration {
	baseDelay := 2 * time.Second
	maxDelay := 30 * time.Second
	jitter := time.Duration(rand.Int64N(1000)) * time.Millisecond

	delay := baseDelay + jitter
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
