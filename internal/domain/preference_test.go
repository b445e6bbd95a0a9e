package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestPreference_Defaults(t *testing.T) {
	p := &RecipientPreference{OwnerID: "user-1"}

	assert.Equal(t, DefaultAlertThreshold, p.Threshold())
	assert.Equal(t, DefaultLanguageCode, p.Language())

	_, ok := p.Endpoint()
	assert.False(t, ok)
}

func TestPreference_ExplicitValues(t *testing.T) {
	p := &RecipientPreference{
		OwnerID:        "user-1",
		AlertThreshold: intPtr(3),
		LanguageCode:   strPtr("ml"),
		DeviceEndpoint: strPtr("device-token-abc"),
	}

	assert.Equal(t, 3, p.Threshold())
	assert.Equal(t, "ml", p.Language())

	endpoint, ok := p.Endpoint()
	assert.True(t, ok)
	assert.Equal(t, "device-token-abc", endpoint)
}

func TestPreference_NonPositiveThresholdFallsBack(t *testing.T) {
	p := &RecipientPreference{OwnerID: "user-1", AlertThreshold: intPtr(0)}

	assert.Equal(t, DefaultAlertThreshold, p.Threshold())
}

func TestPreference_EmptyEndpointNotDeliverable(t *testing.T) {
	p := &RecipientPreference{OwnerID: "user-1", DeviceEndpoint: strPtr("")}

	_, ok := p.Endpoint()
	assert.False(t, ok)
}
