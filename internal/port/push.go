package port

import (
	"context"
	"time"
)

// PushMessage is the device-facing payload: a human-readable notification
// block plus a structured data block the client app routes on.
type PushMessage struct {
	Title   string
	Body    string
	Data    map[string]string
	Android *AndroidConfig
}

// AndroidConfig is the platform-specific delivery hint attached to urgent
// messages, directing the client to a dedicated alert channel.
type AndroidConfig struct {
	ChannelID  string
	Priority   string
	Visibility string
	Sound      string
}

type PushOptions struct {
	Priority   string
	TimeToLive time.Duration
}

// PushSender delivers one message to one registered device endpoint.
// Delivery is best-effort; the transport offers no exactly-once guarantee.
type PushSender interface {
	Send(ctx context.Context, endpoint string, msg PushMessage, opts PushOptions) error
}
