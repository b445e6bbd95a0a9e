package domain

import "errors"

var (
	ErrEmptyRecipient       = errors.New("recipient is required")
	ErrTicketAlreadyServed  = errors.New("ticket position is not ahead of current position")
	ErrQueueNotFound        = errors.New("queue not found")
	ErrStaleAdvance         = errors.New("queue position did not advance")
	ErrPreferenceNotFound   = errors.New("recipient preference not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidThreshold     = errors.New("alert threshold must be positive")
	ErrGatewayUnavailable   = errors.New("push gateway unavailable")
	ErrCircuitOpen          = errors.New("circuit breaker is open")
)
