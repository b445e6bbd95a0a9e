package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/carenow/queue-notify/internal/domain"
)

type NotificationStore interface {
	// CreateIfAbsent persists the record unless one with the same dedup key
	// already exists. It reports whether a new record was created.
	CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	UpdateStatus(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	DeliveryStats(ctx context.Context) ([]domain.KindStats, error)
}
