package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReminderScheduler is the periodic appointment-reminder job. The scan
// itself is not implemented yet; the worker owns the tick so upcoming
// appointment reminders can be emitted here without a new process.
type ReminderScheduler struct {
	logger   *zap.Logger
	interval time.Duration
}

func NewReminderScheduler(logger *zap.Logger, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderScheduler{logger: logger, interval: interval}
}

func (s *ReminderScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *ReminderScheduler) scan(_ context.Context) {
	s.logger.Info("checked for appointment reminders")
}
