package port

import (
	"context"

	"github.com/carenow/queue-notify/internal/domain"
)

// QueueDirectory exposes the queue and ticket data owned by the booking
// system. Tickets are read-only here; Advance is the single write through
// which the serving counter moves.
type QueueDirectory interface {
	GetQueueState(ctx context.Context, key string) (*domain.QueueState, error)
	// Advance moves the queue to the given position and returns the
	// before/after snapshot. Non-increasing targets return ErrStaleAdvance.
	Advance(ctx context.Context, key string, to int) (*domain.QueueAdvance, error)
	TicketsInRange(ctx context.Context, queueKey string, from, to int) ([]domain.Ticket, error)
}

type PreferenceDirectory interface {
	// GetPreference returns ErrPreferenceNotFound for recipients without a
	// notifiable profile.
	GetPreference(ctx context.Context, ownerID string) (*domain.RecipientPreference, error)
	UpsertPreference(ctx context.Context, pref *domain.RecipientPreference) error
}
