package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carenow/queue-notify/internal/domain"
)

type QueueRepo struct {
	db *sqlx.DB
}

func NewQueueRepo(db *sqlx.DB) *QueueRepo {
	return &QueueRepo{db: db}
}

type queueStateRow struct {
	Key             string    `db:"key"`
	CurrentPosition int       `db:"current_position"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type ticketRow struct {
	ID        string    `db:"id"`
	QueueKey  string    `db:"queue_key"`
	OwnerID   string    `db:"owner_id"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *QueueRepo) GetQueueState(ctx context.Context, key string) (*domain.QueueState, error) {
	var row queueStateRow
	err := r.db.GetContext(ctx, &row,
		`SELECT key, current_position, updated_at FROM queue_states WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrQueueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.QueueState{
		Key:             row.Key,
		CurrentPosition: row.CurrentPosition,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

// Advance captures the before/after snapshot in one statement; the guard in
// the WHERE clause keeps concurrent or replayed advances from ever moving
// the counter backwards.
func (r *QueueRepo) Advance(ctx context.Context, key string, to int) (*domain.QueueAdvance, error) {
	var before int
	err := r.db.GetContext(ctx, &before,
		`UPDATE queue_states AS q
		 SET current_position = $2, updated_at = NOW()
		 FROM (SELECT current_position FROM queue_states WHERE key = $1 FOR UPDATE) AS prev
		 WHERE q.key = $1 AND prev.current_position < $2
		 RETURNING prev.current_position`,
		key, to,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the queue is unknown or the target did not advance it.
		if _, gerr := r.GetQueueState(ctx, key); gerr != nil {
			return nil, gerr
		}
		return nil, domain.ErrStaleAdvance
	}
	if err != nil {
		return nil, err
	}

	return &domain.QueueAdvance{QueueKey: key, Before: before, After: to}, nil
}

func (r *QueueRepo) TicketsInRange(ctx context.Context, queueKey string, from, to int) ([]domain.Ticket, error) {
	var rows []ticketRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, queue_key, owner_id, position, created_at
		 FROM tickets
		 WHERE queue_key = $1 AND position BETWEEN $2 AND $3
		 ORDER BY position`,
		queueKey, from, to,
	)
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = domain.Ticket{
			ID:        row.ID,
			QueueKey:  row.QueueKey,
			OwnerID:   row.OwnerID,
			Position:  row.Position,
			CreatedAt: row.CreatedAt,
		}
	}
	return tickets, nil
}
