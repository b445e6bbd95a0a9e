package app

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
)

type mockQueueDirectory struct {
	mu         sync.Mutex
	states     map[string]*domain.QueueState
	tickets    []domain.Ticket
	ticketsErr error
	advanceErr error
}

func newMockQueueDirectory() *mockQueueDirectory {
	return &mockQueueDirectory{states: make(map[string]*domain.QueueState)}
}

func (m *mockQueueDirectory) GetQueueState(_ context.Context, key string) (*domain.QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[key]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	return s, nil
}

func (m *mockQueueDirectory) Advance(_ context.Context, key string, to int) (*domain.QueueAdvance, error) {
	if m.advanceErr != nil {
		return nil, m.advanceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[key]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	if to <= s.CurrentPosition {
		return nil, domain.ErrStaleAdvance
	}
	before := s.CurrentPosition
	s.CurrentPosition = to
	return &domain.QueueAdvance{QueueKey: key, Before: before, After: to}, nil
}

func (m *mockQueueDirectory) TicketsInRange(_ context.Context, queueKey string, from, to int) ([]domain.Ticket, error) {
	if m.ticketsErr != nil {
		return nil, m.ticketsErr
	}
	var out []domain.Ticket
	for _, t := range m.tickets {
		if t.QueueKey == queueKey && t.Position >= from && t.Position <= to {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockPreferenceDirectory struct {
	mu     sync.Mutex
	prefs  map[string]*domain.RecipientPreference
	getErr map[string]error
}

func newMockPreferenceDirectory() *mockPreferenceDirectory {
	return &mockPreferenceDirectory{
		prefs:  make(map[string]*domain.RecipientPreference),
		getErr: make(map[string]error),
	}
}

func (m *mockPreferenceDirectory) GetPreference(_ context.Context, ownerID string) (*domain.RecipientPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.getErr[ownerID]; ok {
		return nil, err
	}
	p, ok := m.prefs[ownerID]
	if !ok {
		return nil, domain.ErrPreferenceNotFound
	}
	return p, nil
}

func (m *mockPreferenceDirectory) UpsertPreference(_ context.Context, pref *domain.RecipientPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[pref.OwnerID] = pref
	return nil
}

type mockNotificationStore struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*domain.Notification
	byDedupKey    map[string]uuid.UUID
	createErr     error
	createErrFor  map[string]error // keyed by owner id
	getByIDErr    error
	updateErr     error
	statsResult   []domain.KindStats
	statsErr      error
	updatedStates []domain.Status
}

func newMockNotificationStore() *mockNotificationStore {
	return &mockNotificationStore{
		byID:         make(map[uuid.UUID]*domain.Notification),
		byDedupKey:   make(map[string]uuid.UUID),
		createErrFor: make(map[string]error),
	}
}

func (m *mockNotificationStore) CreateIfAbsent(_ context.Context, n *domain.Notification) (bool, error) {
	if m.createErr != nil {
		return false, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.createErrFor[n.RecipientID]; ok {
		return false, err
	}
	if n.DedupKey != nil {
		if _, exists := m.byDedupKey[*n.DedupKey]; exists {
			return false, nil
		}
		m.byDedupKey[*n.DedupKey] = n.ID
	}
	m.byID[n.ID] = n
	return true, nil
}

func (m *mockNotificationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return n, nil
}

func (m *mockNotificationStore) UpdateStatus(_ context.Context, n *domain.Notification) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[n.ID] = n
	m.updatedStates = append(m.updatedStates, n.Status)
	return nil
}

func (m *mockNotificationStore) ListByRecipient(_ context.Context, recipientID string, _ int) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Notification
	for _, n := range m.byID {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationStore) MarkRead(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.byID[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationStore) DeliveryStats(_ context.Context) ([]domain.KindStats, error) {
	return m.statsResult, m.statsErr
}

func (m *mockNotificationStore) all() []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Notification, 0, len(m.byID))
	for _, n := range m.byID {
		out = append(out, n)
	}
	return out
}

type mockPushSender struct {
	mu    sync.Mutex
	sends []pushSend
	err   error
}

type pushSend struct {
	Endpoint string
	Msg      port.PushMessage
	Opts     port.PushOptions
}

func (m *mockPushSender) Send(_ context.Context, endpoint string, msg port.PushMessage, opts port.PushOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, pushSend{Endpoint: endpoint, Msg: msg, Opts: opts})
	return m.err
}

type mockPublisher struct {
	mu         sync.Mutex
	advances   []domain.QueueAdvance
	created    []*domain.Notification
	publishErr error
}

func (m *mockPublisher) PublishAdvance(_ context.Context, advance domain.QueueAdvance) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances = append(m.advances, advance)
	return nil
}

func (m *mockPublisher) PublishCreated(_ context.Context, n *domain.Notification) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, n)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type broadcastEvent struct {
	QueueKey       string
	Position       int
	NotificationID string
	Status         string
}

type mockBroadcaster struct {
	mu         sync.Mutex
	advances   []broadcastEvent
	deliveries []broadcastEvent
}

func (m *mockBroadcaster) BroadcastAdvance(queueKey string, position int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances = append(m.advances, broadcastEvent{QueueKey: queueKey, Position: position})
}

func (m *mockBroadcaster) BroadcastDelivery(notificationID, status, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, broadcastEvent{NotificationID: notificationID, Status: status})
}
