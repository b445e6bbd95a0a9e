package domain

import "time"

const (
	DefaultAlertThreshold = 5
	DefaultLanguageCode   = "en"
)

// RecipientPreference is the per-recipient slice of the user directory this
// service cares about: how close they want to be alerted, in which language,
// and on which device. Absent fields fall back to documented defaults.
type RecipientPreference struct {
	OwnerID        string
	AlertThreshold *int
	LanguageCode   *string
	DeviceEndpoint *string
	UpdatedAt      time.Time
}

func (p *RecipientPreference) Threshold() int {
	if p.AlertThreshold == nil || *p.AlertThreshold <= 0 {
		return DefaultAlertThreshold
	}
	return *p.AlertThreshold
}

func (p *RecipientPreference) Language() string {
	if p.LanguageCode == nil || *p.LanguageCode == "" {
		return DefaultLanguageCode
	}
	return *p.LanguageCode
}

// Endpoint returns the registered device endpoint, if any. A recipient
// without one is a normal, non-deliverable profile, not an error.
func (p *RecipientPreference) Endpoint() (string, bool) {
	if p.DeviceEndpoint == nil || *p.DeviceEndpoint == "" {
		return "", false
	}
	return *p.DeviceEndpoint, true
}
