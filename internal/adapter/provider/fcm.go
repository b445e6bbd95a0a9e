package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
	"github.com/carenow/queue-notify/pkg/circuitbreaker"
	"github.com/carenow/queue-notify/pkg/logger"
	"github.com/carenow/queue-notify/pkg/tracing"
)

// FCMProvider sends device-token-addressed messages through an FCM-style
// HTTP gateway. Delivery is best-effort: the caller records the outcome,
// there is no retry here.
type FCMProvider struct {
	gatewayURL string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

func NewFCMProvider(gatewayURL string) *FCMProvider {
	return &FCMProvider{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New("push-gateway"),
	}
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroidNotification struct {
	ChannelID  string `json:"channel_id"`
	Priority   string `json:"priority"`
	Visibility string `json:"visibility"`
	Sound      string `json:"sound"`
}

type fcmAndroid struct {
	Notification fcmAndroidNotification `json:"notification"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
	Priority     string            `json:"priority"`
	TimeToLive   int               `json:"time_to_live"`
}

func (p *FCMProvider) Send(ctx context.Context, endpoint string, msg port.PushMessage, opts port.PushOptions) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.doSend(ctx, endpoint, msg, opts)
	})
	if circuitbreaker.IsOpen(err) {
		return fmt.Errorf("%w: %v", domain.ErrCircuitOpen, err)
	}
	return err
}

func (p *FCMProvider) doSend(ctx context.Context, endpoint string, msg port.PushMessage, opts port.PushOptions) error {
	ctx, span := tracing.Tracer().Start(ctx, "push.send")
	defer span.End()

	span.SetAttributes(
		attribute.String("push.gateway_url", p.gatewayURL),
		attribute.String("push.priority", opts.Priority),
	)

	reqBody := fcmRequest{
		To: endpoint,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:       msg.Data,
		Priority:   opts.Priority,
		TimeToLive: int(opts.TimeToLive.Seconds()),
	}

	if msg.Android != nil {
		reqBody.Android = &fcmAndroid{
			Notification: fcmAndroidNotification{
				ChannelID:  msg.Android.ChannelID,
				Priority:   msg.Android.Priority,
				Visibility: msg.Android.Visibility,
				Sound:      msg.Android.Sound,
			},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL, bytes.NewReader(body))
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if isTransientStatus(resp.StatusCode) {
		transientErr := fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
		tracing.RecordError(span, transientErr)
		return transientErr
	}

	if resp.StatusCode >= 400 {
		permErr := fmt.Errorf("push rejected: status %d, body: %s", resp.StatusCode, string(respBody))
		tracing.RecordError(span, permErr)
		return permErr
	}

	return nil
}

func isTransientStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
