package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProximityNotification(t *testing.T) {
	ticket := Ticket{ID: "t-1", QueueKey: "D1", OwnerID: "user-1", Position: 13}

	n, err := NewProximityNotification("D1", ticket, 12, "en")

	require.NoError(t, err)
	assert.Equal(t, "user-1", n.RecipientID)
	assert.Equal(t, KindTokenNear, n.Kind)
	assert.Equal(t, StatusPending, n.Status)
	assert.False(t, n.IsRead)
	require.NotNil(t, n.RelatedPosition)
	assert.Equal(t, 13, *n.RelatedPosition)
	assert.Equal(t, PriorityCritical, n.Priority)
	require.NotNil(t, n.DedupKey)
	assert.Equal(t, "D1|13|tokenNear", *n.DedupKey)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestNewProximityNotification_FarTicketIsHighNotCritical(t *testing.T) {
	ticket := Ticket{QueueKey: "D1", OwnerID: "user-2", Position: 15}

	n, err := NewProximityNotification("D1", ticket, 12, "en")

	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, n.Priority)
}

func TestNewProximityNotification_EmptyOwner(t *testing.T) {
	ticket := Ticket{QueueKey: "D1", Position: 13}

	_, err := NewProximityNotification("D1", ticket, 12, "en")

	assert.ErrorIs(t, err, ErrEmptyRecipient)
}

func TestNewProximityNotification_TicketBehindCurrent(t *testing.T) {
	ticket := Ticket{QueueKey: "D1", OwnerID: "user-1", Position: 12}

	_, err := NewProximityNotification("D1", ticket, 12, "en")

	assert.ErrorIs(t, err, ErrTicketAlreadyServed)
}

func TestNotification_IsUrgent(t *testing.T) {
	assert.True(t, (&Notification{Kind: KindSOS}).IsUrgent())
	assert.False(t, (&Notification{Kind: KindTokenNear}).IsUrgent())
	assert.False(t, (&Notification{Kind: KindGeneral}).IsUrgent())
}

func TestNotification_MarkSent(t *testing.T) {
	n := &Notification{Status: StatusPending}

	n.MarkSent()

	assert.Equal(t, StatusSent, n.Status)
	assert.NotNil(t, n.SentAt)
	assert.True(t, n.IsTerminal())
}

func TestNotification_MarkFailed(t *testing.T) {
	n := &Notification{Status: StatusPending}

	n.MarkFailed("device unreachable")

	assert.Equal(t, StatusFailed, n.Status)
	require.NotNil(t, n.ErrorMessage)
	assert.Equal(t, "device unreachable", *n.ErrorMessage)
	assert.NotNil(t, n.FailedAt)
	assert.True(t, n.IsTerminal())
}
