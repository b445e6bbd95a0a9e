package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTokenNear Kind = "tokenNear"
	KindSOS       Kind = "sos"
	KindGeneral   Kind = "general"
)

type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Notification is the unit of work between the queue-advance evaluator and
// the delivery dispatcher. It is created once in state pending and moved
// exactly once to a terminal state by the dispatcher.
type Notification struct {
	ID              uuid.UUID
	RecipientID     string
	Kind            Kind
	Title           string
	Body            string
	RelatedPosition *int
	Priority        Priority
	Status          Status
	IsRead          bool
	DedupKey        *string
	ErrorMessage    *string
	SentAt          *time.Time
	FailedAt        *time.Time
	CreatedAt       time.Time
}

// NewProximityNotification builds the pending tokenNear record for a ticket
// whose position has come within alerting distance of the current one.
// The dedup key makes record creation an insert-if-absent, so a retried or
// overlapping trigger cannot notify the same ticket twice.
func NewProximityNotification(queueKey string, t Ticket, currentPosition int, languageCode string) (*Notification, error) {
	if t.OwnerID == "" {
		return nil, ErrEmptyRecipient
	}
	diff := t.Position - currentPosition
	if diff < 1 {
		return nil, fmt.Errorf("%w: position %d, current %d", ErrTicketAlreadyServed, t.Position, currentPosition)
	}

	title, body := LocalizeTokenNear(languageCode, currentPosition, t.Position)
	position := t.Position
	key := ProximityDedupKey(queueKey, t.Position)

	return &Notification{
		ID:              uuid.Must(uuid.NewV7()),
		RecipientID:     t.OwnerID,
		Kind:            KindTokenNear,
		Title:           title,
		Body:            body,
		RelatedPosition: &position,
		Priority:        ClassifyProximity(diff),
		Status:          StatusPending,
		DedupKey:        &key,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ProximityDedupKey is deterministic for a (queue, position, kind) triple.
func ProximityDedupKey(queueKey string, position int) string {
	return fmt.Sprintf("%s|%d|%s", queueKey, position, KindTokenNear)
}

// IsUrgent reports whether delivery must be forced onto the dedicated
// high-priority client channel, independent of the priority tier.
func (n *Notification) IsUrgent() bool {
	return n.Kind == KindSOS
}

func (n *Notification) IsTerminal() bool {
	return n.Status == StatusSent || n.Status == StatusFailed
}

func (n *Notification) MarkSent() {
	now := time.Now().UTC()
	n.Status = StatusSent
	n.SentAt = &now
}

func (n *Notification) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	n.Status = StatusFailed
	n.ErrorMessage = &errMsg
	n.FailedAt = &now
}

// KindStats is a per-kind delivery outcome rollup read back from the store.
type KindStats struct {
	Kind    string `db:"kind"`
	Pending int64  `db:"pending"`
	Sent    int64  `db:"sent"`
	Failed  int64  `db:"failed"`
}
