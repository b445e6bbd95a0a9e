package http

import (
	"time"

	"github.com/carenow/queue-notify/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type AdvanceQueueRequest struct {
	Position int `json:"position" binding:"required,min=1"`
}

type QueueStateResponse struct {
	Key             string    `json:"key"`
	CurrentPosition int       `json:"current_position"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewQueueStateResponse(s *domain.QueueState) QueueStateResponse {
	return QueueStateResponse{
		Key:             s.Key,
		CurrentPosition: s.CurrentPosition,
		UpdatedAt:       s.UpdatedAt,
	}
}

type AdvanceQueueResponse struct {
	QueueKey string `json:"queue_key"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
}

type UpsertPreferenceRequest struct {
	AlertThreshold *int    `json:"alert_threshold"`
	LanguageCode   *string `json:"language_code"`
	DeviceEndpoint *string `json:"device_endpoint"`
}

func (r UpsertPreferenceRequest) ToPreference(ownerID string) *domain.RecipientPreference {
	return &domain.RecipientPreference{
		OwnerID:        ownerID,
		AlertThreshold: r.AlertThreshold,
		LanguageCode:   r.LanguageCode,
		DeviceEndpoint: r.DeviceEndpoint,
	}
}

type PreferenceResponse struct {
	OwnerID        string  `json:"owner_id"`
	AlertThreshold int     `json:"alert_threshold"`
	LanguageCode   string  `json:"language_code"`
	DeviceEndpoint *string `json:"device_endpoint,omitempty"`
}

func NewPreferenceResponse(p *domain.RecipientPreference) PreferenceResponse {
	return PreferenceResponse{
		OwnerID:        p.OwnerID,
		AlertThreshold: p.Threshold(),
		LanguageCode:   p.Language(),
		DeviceEndpoint: p.DeviceEndpoint,
	}
}

type NotificationResponse struct {
	ID              string     `json:"id"`
	RecipientID     string     `json:"recipient_id"`
	Kind            string     `json:"kind"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	RelatedPosition *int       `json:"related_position,omitempty"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	IsRead          bool       `json:"is_read"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID.String(),
		RecipientID:     n.RecipientID,
		Kind:            string(n.Kind),
		Title:           n.Title,
		Body:            n.Body,
		RelatedPosition: n.RelatedPosition,
		Priority:        string(n.Priority),
		Status:          string(n.Status),
		IsRead:          n.IsRead,
		ErrorMessage:    n.ErrorMessage,
		SentAt:          n.SentAt,
		FailedAt:        n.FailedAt,
		CreatedAt:       n.CreatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

func NewNotificationListResponse(notifications []*domain.Notification) NotificationListResponse {
	out := NotificationListResponse{
		Notifications: make([]NotificationResponse, len(notifications)),
	}
	for i, n := range notifications {
		out.Notifications[i] = NewNotificationResponse(n)
	}
	return out
}
