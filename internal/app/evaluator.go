package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
	"github.com/carenow/queue-notify/pkg/tracing"
)

// Evaluator reacts to queue position transitions. For every ticket inside
// the lookahead window whose owner is now within their configured alert
// distance, it records exactly one pending notification and announces it
// for delivery.
type Evaluator struct {
	queues    port.QueueDirectory
	prefs     port.PreferenceDirectory
	store     port.NotificationStore
	publisher port.EventPublisher
	logger    *zap.Logger
}

func NewEvaluator(
	queues port.QueueDirectory,
	prefs port.PreferenceDirectory,
	store port.NotificationStore,
	publisher port.EventPublisher,
	logger *zap.Logger,
) *Evaluator {
	return &Evaluator{
		queues:    queues,
		prefs:     prefs,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleAdvance evaluates one observed transition. Per-ticket evaluation is
// independent and runs concurrently; the call returns only once every
// ticket's outcome is known. Individual failures do not abort the rest of
// the window, but the joined error is surfaced so the trigger mechanism can
// redeliver the transition. Records already written stay written; dedup
// keys make the retry safe.
func (e *Evaluator) HandleAdvance(ctx context.Context, advance domain.QueueAdvance) error {
	ctx, span := tracing.Tracer().Start(ctx, "evaluator.advance")
	defer span.End()

	span.SetAttributes(tracing.QueueAttrs(advance.QueueKey, advance.Before, advance.After)...)

	if !advance.Advanced() {
		span.SetAttributes(attribute.Bool("evaluator.skipped", true))
		e.logger.Debug("ignoring non-advancing transition",
			zap.String("queue_key", advance.QueueKey),
			zap.Int("before", advance.Before),
			zap.Int("after", advance.After),
		)
		return nil
	}

	from, to := advance.Window()
	tickets, err := e.queues.TicketsInRange(ctx, advance.QueueKey, from, to)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("query tickets for %s: %w", advance.QueueKey, err)
	}

	span.SetAttributes(attribute.Int("evaluator.window_tickets", len(tickets)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		created int
	)

	for _, ticket := range tickets {
		wg.Add(1)
		go func(t domain.Ticket) {
			defer wg.Done()
			notified, err := e.evaluateTicket(ctx, advance, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("ticket %d: %w", t.Position, err))
				return
			}
			if notified {
				created++
			}
		}(ticket)
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int("evaluator.records_created", created),
		attribute.Int("evaluator.ticket_failures", len(errs)),
	)

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		tracing.RecordError(span, joined)
		e.logger.Error("queue advance partially evaluated",
			zap.String("queue_key", advance.QueueKey),
			zap.Int("after", advance.After),
			zap.Int("created", created),
			zap.Int("failed", len(errs)),
			zap.Error(joined),
		)
		return joined
	}

	e.logger.Info("queue advance evaluated",
		zap.String("queue_key", advance.QueueKey),
		zap.Int("before", advance.Before),
		zap.Int("after", advance.After),
		zap.Int("tickets_in_window", len(tickets)),
		zap.Int("records_created", created),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return nil
}

// evaluateTicket decides one ticket's outcome. A missing preference profile
// or a ticket outside the owner's threshold is a skip, not an error.
func (e *Evaluator) evaluateTicket(ctx context.Context, advance domain.QueueAdvance, t domain.Ticket) (bool, error) {
	pref, err := e.prefs.GetPreference(ctx, t.OwnerID)
	if errors.Is(err, domain.ErrPreferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup preference for %s: %w", t.OwnerID, err)
	}

	diff := t.Position - advance.After
	if diff > pref.Threshold() {
		return false, nil
	}

	n, err := domain.NewProximityNotification(advance.QueueKey, t, advance.After, pref.Language())
	if err != nil {
		return false, err
	}

	created, err := e.store.CreateIfAbsent(ctx, n)
	if err != nil {
		return false, fmt.Errorf("create record: %w", err)
	}
	if !created {
		e.logger.Debug("record already exists for ticket",
			zap.String("queue_key", advance.QueueKey),
			zap.Int("position", t.Position),
		)
		return false, nil
	}

	if err := e.publisher.PublishCreated(ctx, n); err != nil {
		return false, fmt.Errorf("publish created event: %w", err)
	}

	e.logger.Info("proximity notification recorded",
		zap.String("id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID),
		zap.String("queue_key", advance.QueueKey),
		zap.Int("position", t.Position),
		zap.Int("diff", diff),
		zap.String("priority", string(n.Priority)),
	)
	return true, nil
}
