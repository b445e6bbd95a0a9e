package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/domain"
)

func newTestDispatcher() (*Dispatcher, *mockNotificationStore, *mockPreferenceDirectory, *mockPushSender, *mockBroadcaster) {
	store := newMockNotificationStore()
	prefs := newMockPreferenceDirectory()
	push := &mockPushSender{}
	broadcaster := &mockBroadcaster{}
	d := NewDispatcher(store, prefs, push, broadcaster, zap.NewNop())
	return d, store, prefs, push, broadcaster
}

func pendingRecord(recipientID string) *domain.Notification {
	return &domain.Notification{
		ID:          uuid.Must(uuid.NewV7()),
		RecipientID: recipientID,
		Kind:        domain.KindTokenNear,
		Title:       "Your Turn is Approaching!",
		Body:        "Current Token is 12. You are Token 13.",
		Priority:    domain.PriorityCritical,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDispatcher_Success(t *testing.T) {
	d, store, prefs, push, broadcaster := newTestDispatcher()

	n := pendingRecord("u1")
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, n.Status)
	assert.NotNil(t, n.SentAt)

	require.Len(t, push.sends, 1)
	assert.Equal(t, "device-u1", push.sends[0].Endpoint)
	assert.Equal(t, "Your Turn is Approaching!", push.sends[0].Msg.Title)
	assert.Equal(t, "high", push.sends[0].Opts.Priority)
	assert.Equal(t, 24*time.Hour, push.sends[0].Opts.TimeToLive)
	assert.Equal(t, "tokenNear", push.sends[0].Msg.Data["type"])
	assert.Equal(t, "critical", push.sends[0].Msg.Data["priority"])
	assert.Equal(t, "false", push.sends[0].Msg.Data["is_sos"])
	assert.Equal(t, n.ID.String(), push.sends[0].Msg.Data["id"])
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", push.sends[0].Msg.Data["click_action"])
	assert.Nil(t, push.sends[0].Msg.Android)

	require.Len(t, broadcaster.deliveries, 1)
	assert.Equal(t, "sent", broadcaster.deliveries[0].Status)
}

func TestDispatcher_SendFailureIsTerminal(t *testing.T) {
	d, store, prefs, push, broadcaster := newTestDispatcher()

	n := pendingRecord("u1")
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")
	push.err = errors.New("device unreachable")

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err, "send failures are terminal, not retriable")
	assert.Equal(t, domain.StatusFailed, n.Status)
	require.NotNil(t, n.ErrorMessage)
	assert.Equal(t, "device unreachable", *n.ErrorMessage)

	require.Len(t, broadcaster.deliveries, 1)
	assert.Equal(t, "failed", broadcaster.deliveries[0].Status)
}

func TestDispatcher_NeverLeavesPendingAfterSendAttempt(t *testing.T) {
	d, store, prefs, push, _ := newTestDispatcher()

	n := pendingRecord("u1")
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")
	push.err = errors.New("boom")

	_ = d.Dispatch(context.Background(), n.ID.String())

	require.Len(t, store.updatedStates, 1)
	assert.NotEqual(t, domain.StatusPending, store.updatedStates[0])
}

func TestDispatcher_NoRecipient(t *testing.T) {
	d, store, _, push, _ := newTestDispatcher()

	n := pendingRecord("")
	store.byID[n.ID] = n

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, n.Status)
	assert.Empty(t, push.sends)
	assert.Empty(t, store.updatedStates)
}

func TestDispatcher_MissingProfile(t *testing.T) {
	d, store, _, push, _ := newTestDispatcher()

	n := pendingRecord("ghost")
	store.byID[n.ID] = n

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, n.Status)
	assert.Empty(t, push.sends)
}

func TestDispatcher_NoDeviceEndpoint(t *testing.T) {
	d, store, prefs, push, _ := newTestDispatcher()

	n := pendingRecord("u1")
	store.byID[n.ID] = n
	prefs.prefs["u1"] = &domain.RecipientPreference{OwnerID: "u1"}

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, n.Status)
	assert.Empty(t, push.sends)
	assert.Empty(t, store.updatedStates)
}

func TestDispatcher_SkipsTerminalRecord(t *testing.T) {
	d, store, prefs, push, _ := newTestDispatcher()

	n := pendingRecord("u1")
	n.MarkSent()
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	assert.Empty(t, push.sends)
}

// An sos record goes out high priority on the dedicated channel even when
// its stated tier would not warrant it.
func TestDispatcher_SOSOverridesPriority(t *testing.T) {
	d, store, prefs, push, _ := newTestDispatcher()

	n := pendingRecord("u1")
	n.Kind = domain.KindSOS
	n.Priority = domain.Priority("medium")
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	require.Len(t, push.sends, 1)

	sent := push.sends[0]
	assert.Equal(t, "high", sent.Opts.Priority)
	assert.Equal(t, "true", sent.Msg.Data["is_sos"])
	assert.Equal(t, "medium", sent.Msg.Data["priority"])

	require.NotNil(t, sent.Msg.Android)
	assert.Equal(t, "sos_channel", sent.Msg.Android.ChannelID)
	assert.Equal(t, "max", sent.Msg.Android.Priority)
	assert.Equal(t, "private", sent.Msg.Android.Visibility)
	assert.Equal(t, "sos_alert", sent.Msg.Android.Sound)
}

func TestDispatcher_NormalPriorityTransport(t *testing.T) {
	d, store, prefs, push, _ := newTestDispatcher()

	n := pendingRecord("u1")
	n.Kind = domain.KindGeneral
	n.Priority = domain.PriorityNormal
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	require.Len(t, push.sends, 1)
	assert.Equal(t, "normal", push.sends[0].Opts.Priority)
}

func TestDispatcher_GenericFallbackText(t *testing.T) {
	d, store, prefs, push, _ := newTestDispatcher()

	n := pendingRecord("u1")
	n.Title = ""
	n.Body = ""
	store.byID[n.ID] = n
	seedOwner(prefs, "u1")

	err := d.Dispatch(context.Background(), n.ID.String())

	require.NoError(t, err)
	require.Len(t, push.sends, 1)
	assert.Equal(t, "New Notification", push.sends[0].Msg.Title)
	assert.Equal(t, "You have a new alert", push.sends[0].Msg.Body)
}

func TestDispatcher_LoadFailureIsRetriable(t *testing.T) {
	d, store, _, _, _ := newTestDispatcher()
	store.getByIDErr = errors.New("connection reset")

	err := d.Dispatch(context.Background(), uuid.Must(uuid.NewV7()).String())

	require.Error(t, err)
}

func TestDispatcher_UnknownRecordNotRetried(t *testing.T) {
	d, _, _, _, _ := newTestDispatcher()

	err := d.Dispatch(context.Background(), uuid.Must(uuid.NewV7()).String())

	require.NoError(t, err)
}

func TestDispatcher_MalformedID(t *testing.T) {
	d, _, _, push, _ := newTestDispatcher()

	err := d.Dispatch(context.Background(), "not-a-uuid")

	require.NoError(t, err)
	assert.Empty(t, push.sends)
}
