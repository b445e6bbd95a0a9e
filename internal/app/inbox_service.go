package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
)

// InboxService is the read side of the notification store for client apps.
type InboxService struct {
	store port.NotificationStore
}

func NewInboxService(store port.NotificationStore) *InboxService {
	return &InboxService{store: store}
}

func (s *InboxService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return s.store.GetByID(ctx, id)
}

func (s *InboxService) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListByRecipient(ctx, recipientID, limit)
}

func (s *InboxService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.store.MarkRead(ctx, id)
}
