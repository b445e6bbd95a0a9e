package domain

import "time"

// LookaheadWindow bounds how many positions past the currently served one
// the evaluator scans after an advance. It must stay comfortably larger
// than any alert threshold a recipient can configure.
const LookaheadWindow = 20

type QueueState struct {
	Key             string
	CurrentPosition int
	UpdatedAt       time.Time
}

// Ticket is a reservation holding a fixed future position in a queue.
// Tickets are issued and destroyed by the booking system; this service
// only ever reads them.
type Ticket struct {
	ID        string
	QueueKey  string
	OwnerID   string
	Position  int
	CreatedAt time.Time
}

// QueueAdvance is a before/after snapshot of one queue position transition.
type QueueAdvance struct {
	QueueKey string
	Before   int
	After    int
}

// Advanced reports whether the transition actually moved the queue forward.
// Out-of-order or duplicate trigger deliveries show up as non-advances.
func (a QueueAdvance) Advanced() bool {
	return a.After > a.Before
}

// Window returns the inclusive range of upcoming positions to scan.
func (a QueueAdvance) Window() (from, to int) {
	return a.After + 1, a.After + LookaheadWindow
}
