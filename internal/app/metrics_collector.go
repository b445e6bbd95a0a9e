package app

import (
	"context"

	"github.com/carenow/queue-notify/internal/port"
)

type MetricsCollector struct {
	store port.NotificationStore
}

func NewMetricsCollector(store port.NotificationStore) *MetricsCollector {
	return &MetricsCollector{store: store}
}

type MetricsSnapshot struct {
	Kinds map[string]KindSnapshot `json:"kinds"`
}

type KindSnapshot struct {
	Pending      int64   `json:"pending"`
	Sent         int64   `json:"sent"`
	Failed       int64   `json:"failed"`
	DeliveryRate float64 `json:"delivery_rate"`
}

// Snapshot reads delivery outcome counts per notification kind back from
// the store. Kinds with no recorded outcomes report zeroes.
func (m *MetricsCollector) Snapshot(ctx context.Context) MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Kinds: map[string]KindSnapshot{
			"tokenNear": {},
			"sos":       {},
			"general":   {},
		},
	}

	stats, err := m.store.DeliveryStats(ctx)
	if err != nil {
		return snapshot
	}

	for _, s := range stats {
		total := s.Sent + s.Failed
		var rate float64
		if total > 0 {
			rate = float64(s.Sent) / float64(total) * 100
		}
		snapshot.Kinds[s.Kind] = KindSnapshot{
			Pending:      s.Pending,
			Sent:         s.Sent,
			Failed:       s.Failed,
			DeliveryRate: rate,
		}
	}

	return snapshot
}
