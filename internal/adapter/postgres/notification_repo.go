package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carenow/queue-notify/internal/domain"
)

type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

type notificationRow struct {
	ID              uuid.UUID  `db:"id"`
	RecipientID     string     `db:"recipient_id"`
	Kind            string     `db:"kind"`
	Title           string     `db:"title"`
	Body            string     `db:"body"`
	RelatedPosition *int       `db:"related_position"`
	Priority        string     `db:"priority"`
	Status          string     `db:"status"`
	IsRead          bool       `db:"is_read"`
	DedupKey        *string    `db:"dedup_key"`
	ErrorMessage    *string    `db:"error_message"`
	SentAt          *time.Time `db:"sent_at"`
	FailedAt        *time.Time `db:"failed_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// CreateIfAbsent is the dedup point of the pipeline: the partial unique
// index on dedup_key turns a replayed evaluation into a silent no-op.
func (r *NotificationRepo) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications
		 (id, recipient_id, kind, title, body, related_position, priority, status, is_read, dedup_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (dedup_key) WHERE dedup_key IS NOT NULL DO NOTHING`,
		n.ID, n.RecipientID, n.Kind, n.Title, n.Body, n.RelatedPosition,
		n.Priority, n.Status, n.IsRead, n.DedupKey, n.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var row notificationRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM notifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToNotification(row), nil
}

func (r *NotificationRepo) UpdateStatus(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications
		 SET status = $1, sent_at = $2, failed_at = $3, error_message = $4
		 WHERE id = $5`,
		n.Status, n.SentAt, n.FailedAt, n.ErrorMessage, n.ID,
	)
	return err
}

func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM notifications
		 WHERE recipient_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		recipientID, limit,
	)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Notification, len(rows))
	for i, row := range rows {
		result[i] = rowToNotification(row)
	}
	return result, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepo) DeliveryStats(ctx context.Context) ([]domain.KindStats, error) {
	var stats []domain.KindStats
	err := r.db.SelectContext(ctx, &stats,
		`SELECT kind,
		        COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		        COUNT(*) FILTER (WHERE status = 'sent') AS sent,
		        COUNT(*) FILTER (WHERE status = 'failed') AS failed
		 FROM notifications
		 GROUP BY kind`,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func rowToNotification(row notificationRow) *domain.Notification {
	return &domain.Notification{
		ID:              row.ID,
		RecipientID:     row.RecipientID,
		Kind:            domain.Kind(row.Kind),
		Title:           row.Title,
		Body:            row.Body,
		RelatedPosition: row.RelatedPosition,
		Priority:        domain.Priority(row.Priority),
		Status:          domain.Status(row.Status),
		IsRead:          row.IsRead,
		DedupKey:        row.DedupKey,
		ErrorMessage:    row.ErrorMessage,
		SentAt:          row.SentAt,
		FailedAt:        row.FailedAt,
		CreatedAt:       row.CreatedAt,
	}
}
