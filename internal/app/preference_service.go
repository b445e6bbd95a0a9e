package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carenow/queue-notify/internal/domain"
	"github.com/carenow/queue-notify/internal/port"
)

type PreferenceService struct {
	prefs  port.PreferenceDirectory
	logger *zap.Logger
}

func NewPreferenceService(prefs port.PreferenceDirectory, logger *zap.Logger) *PreferenceService {
	return &PreferenceService{prefs: prefs, logger: logger}
}

func (s *PreferenceService) Get(ctx context.Context, ownerID string) (*domain.RecipientPreference, error) {
	return s.prefs.GetPreference(ctx, ownerID)
}

// Upsert stores a recipient's alerting preferences and device registration.
func (s *PreferenceService) Upsert(ctx context.Context, pref *domain.RecipientPreference) error {
	if pref.OwnerID == "" {
		return domain.ErrEmptyRecipient
	}
	if pref.AlertThreshold != nil && *pref.AlertThreshold <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidThreshold, *pref.AlertThreshold)
	}
	pref.UpdatedAt = time.Now().UTC()

	if err := s.prefs.UpsertPreference(ctx, pref); err != nil {
		return err
	}

	s.logger.Info("recipient preference updated",
		zap.String("owner_id", pref.OwnerID),
		zap.Int("threshold", pref.Threshold()),
		zap.String("language", pref.Language()),
	)
	return nil
}
