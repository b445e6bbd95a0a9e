package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/domain"
)

func newTestQueueService() (*QueueService, *mockQueueDirectory, *mockPublisher, *mockBroadcaster) {
	queues := newMockQueueDirectory()
	publisher := &mockPublisher{}
	broadcaster := &mockBroadcaster{}
	svc := NewQueueService(queues, publisher, broadcaster, zap.NewNop())
	return svc, queues, publisher, broadcaster
}

func TestQueueService_Advance(t *testing.T) {
	svc, queues, publisher, broadcaster := newTestQueueService()
	queues.states["D1"] = &domain.QueueState{Key: "D1", CurrentPosition: 10}

	advance, err := svc.Advance(context.Background(), "D1", 12)

	require.NoError(t, err)
	assert.Equal(t, 10, advance.Before)
	assert.Equal(t, 12, advance.After)

	require.Len(t, publisher.advances, 1)
	assert.Equal(t, "D1", publisher.advances[0].QueueKey)

	require.Len(t, broadcaster.advances, 1)
	assert.Equal(t, 12, broadcaster.advances[0].Position)
}

func TestQueueService_StaleAdvance(t *testing.T) {
	svc, queues, publisher, _ := newTestQueueService()
	queues.states["D1"] = &domain.QueueState{Key: "D1", CurrentPosition: 10}

	_, err := svc.Advance(context.Background(), "D1", 10)

	assert.ErrorIs(t, err, domain.ErrStaleAdvance)
	assert.Empty(t, publisher.advances)
}

func TestQueueService_UnknownQueue(t *testing.T) {
	svc, _, _, _ := newTestQueueService()

	_, err := svc.Advance(context.Background(), "nope", 5)

	assert.ErrorIs(t, err, domain.ErrQueueNotFound)
}

func TestQueueService_PublishFailureSurfaces(t *testing.T) {
	svc, queues, publisher, broadcaster := newTestQueueService()
	queues.states["D1"] = &domain.QueueState{Key: "D1", CurrentPosition: 10}
	publisher.publishErr = errors.New("broker down")

	_, err := svc.Advance(context.Background(), "D1", 12)

	require.Error(t, err)
	assert.Empty(t, broadcaster.advances)
}
