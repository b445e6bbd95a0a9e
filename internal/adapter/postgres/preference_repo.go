package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carenow/queue-notify/internal/domain"
)

type PreferenceRepo struct {
	db *sqlx.DB
}

func NewPreferenceRepo(db *sqlx.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

type preferenceRow struct {
	OwnerID        string    `db:"owner_id"`
	AlertThreshold *int      `db:"alert_threshold"`
	LanguageCode   *string   `db:"language_code"`
	DeviceEndpoint *string   `db:"device_endpoint"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *PreferenceRepo) GetPreference(ctx context.Context, ownerID string) (*domain.RecipientPreference, error) {
	var row preferenceRow
	err := r.db.GetContext(ctx, &row,
		`SELECT owner_id, alert_threshold, language_code, device_endpoint, updated_at
		 FROM recipient_preferences WHERE owner_id = $1`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPreferenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.RecipientPreference{
		OwnerID:        row.OwnerID,
		AlertThreshold: row.AlertThreshold,
		LanguageCode:   row.LanguageCode,
		DeviceEndpoint: row.DeviceEndpoint,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func (r *PreferenceRepo) UpsertPreference(ctx context.Context, pref *domain.RecipientPreference) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recipient_preferences (owner_id, alert_threshold, language_code, device_endpoint, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (owner_id) DO UPDATE SET
		   alert_threshold = EXCLUDED.alert_threshold,
		   language_code = EXCLUDED.language_code,
		   device_endpoint = EXCLUDED.device_endpoint,
		   updated_at = EXCLUDED.updated_at`,
		pref.OwnerID, pref.AlertThreshold, pref.LanguageCode, pref.DeviceEndpoint, pref.UpdatedAt,
	)
	return err
}
