package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
	"github.com/carenow/queue-notify/pkg/tracing"
)

const (
	defaultPushTitle = "New Notification"
	defaultPushBody  = "You have a new alert"

	// Records minted outside the proximity path may omit a priority tier;
	// the client treats the payload default as medium.
	defaultDataPriority = "medium"

	clickAction = "FLUTTER_NOTIFICATION_CLICK"
	pushTTL     = 24 * time.Hour
)

// Dispatcher consumes freshly created notification records, resolves the
// recipient's device endpoint, and makes exactly one delivery attempt,
// leaving the record in a terminal state.
type Dispatcher struct {
	store       port.NotificationStore
	prefs       port.PreferenceDirectory
	push        port.PushSender
	broadcaster port.EventBroadcaster
	logger      *zap.Logger
}

func NewDispatcher(
	store port.NotificationStore,
	prefs port.PreferenceDirectory,
	push port.PushSender,
	broadcaster port.EventBroadcaster,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:       store,
		prefs:       prefs,
		push:        push,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Dispatch delivers one record. A returned error means the record could not
// be loaded and the trigger should be redelivered; every other outcome,
// including a failed send, is terminal and returns nil.
func (d *Dispatcher) Dispatch(ctx context.Context, notificationID string) error {
	ctx, span := tracing.Tracer().Start(ctx, "dispatcher.dispatch")
	defer span.End()

	span.SetAttributes(attribute.String("notification.id", notificationID))

	id, err := uuid.Parse(notificationID)
	if err != nil {
		d.logger.Warn("malformed notification id", zap.String("id", notificationID), zap.Error(err))
		return nil
	}

	n, err := d.store.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotificationNotFound) {
		d.logger.Warn("notification record vanished", zap.String("id", notificationID))
		return nil
	}
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	span.SetAttributes(tracing.NotificationAttrs(notificationID, string(n.Kind), string(n.Priority))...)
	span.SetAttributes(attribute.String("notification.status", string(n.Status)))

	if n.RecipientID == "" {
		// Malformed record: logged, never mutated, never retried.
		d.logger.Warn("notification has no recipient", zap.String("id", notificationID))
		return nil
	}

	if n.IsTerminal() {
		span.SetAttributes(attribute.Bool("dispatch.skipped", true))
		return nil
	}

	pref, err := d.prefs.GetPreference(ctx, n.RecipientID)
	if errors.Is(err, domain.ErrPreferenceNotFound) {
		d.logger.Info("recipient profile not found, nothing to deliver to",
			zap.String("id", notificationID),
			zap.String("recipient_id", n.RecipientID),
		)
		return nil
	}
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	endpoint, ok := pref.Endpoint()
	if !ok {
		d.logger.Debug("recipient has no device endpoint",
			zap.String("id", notificationID),
			zap.String("recipient_id", n.RecipientID),
		)
		return nil
	}

	msg := buildPushMessage(n)
	opts := port.PushOptions{
		Priority:   transportPriority(n),
		TimeToLive: pushTTL,
	}

	span.SetAttributes(
		attribute.Bool("dispatch.urgent", n.IsUrgent()),
		attribute.String("dispatch.transport_priority", opts.Priority),
	)

	start := time.Now()
	sendErr := d.push.Send(ctx, endpoint, msg, opts)
	latency := time.Since(start)
	span.SetAttributes(attribute.Int64("dispatch.latency_ms", latency.Milliseconds()))

	if sendErr != nil {
		n.MarkFailed(sendErr.Error())
		if err := d.store.UpdateStatus(ctx, n); err != nil {
			d.logger.Error("failed to record failed status", zap.String("id", notificationID), zap.Error(err))
		}
		d.broadcastStatus(n)
		tracing.RecordError(span, sendErr)
		d.logger.Error("push delivery failed",
			zap.String("id", notificationID),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(sendErr),
			zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
		)
		return nil
	}

	n.MarkSent()
	if err := d.store.UpdateStatus(ctx, n); err != nil {
		d.logger.Error("failed to record sent status", zap.String("id", notificationID), zap.Error(err))
	}
	d.broadcastStatus(n)

	d.logger.Info("notification delivered",
		zap.String("id", notificationID),
		zap.String("recipient_id", n.RecipientID),
		zap.String("kind", string(n.Kind)),
		zap.Duration("latency", latency),
		zap.String("trace_id", tracing.TraceIDFromContext(ctx)),
	)
	return nil
}

func (d *Dispatcher) broadcastStatus(n *domain.Notification) {
	d.broadcaster.BroadcastDelivery(n.ID.String(), string(n.Status), time.Now().UTC().Format(time.RFC3339))
}

func buildPushMessage(n *domain.Notification) port.PushMessage {
	title := n.Title
	if title == "" {
		title = defaultPushTitle
	}
	body := n.Body
	if body == "" {
		body = defaultPushBody
	}

	kind := string(n.Kind)
	if kind == "" {
		kind = "info"
	}
	priority := string(n.Priority)
	if priority == "" {
		priority = defaultDataPriority
	}

	isSOS := "false"
	if n.IsUrgent() {
		isSOS = "true"
	}

	msg := port.PushMessage{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":         kind,
			"priority":     priority,
			"id":           n.ID.String(),
			"click_action": clickAction,
			"is_sos":       isSOS,
		},
	}

	if n.IsUrgent() {
		msg.Android = &port.AndroidConfig{
			ChannelID:  "sos_channel",
			Priority:   "max",
			Visibility: "private",
			Sound:      "sos_alert",
		}
	}

	return msg
}

// transportPriority is the delivery-level priority, distinct from the
// record's tier: urgent records always go out high.
func transportPriority(n *domain.Notification) string {
	if n.Priority == domain.PriorityHigh || n.Priority == domain.PriorityCritical || n.IsUrgent() {
		return "high"
	}
	return "normal"
}
