package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/anchorapp/anchor/internal/store"
)

// OutboxService drains the notification outbox in the background: pending
// rows are handed to the Notifier and marked delivered, and old delivered
// rows are purged. Redemption and disconnect only enqueue; a notification
// failure can therefore never roll back a committed connection.
type OutboxService struct {
	Store     store.Store
	Notifier  Notifier
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	BatchSize int

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewOutboxService builds an outbox worker. Zero interval defaults to one
// minute, zero retention to 30 days, zero batch size to 100.
func NewOutboxService(st store.Store, notifier Notifier, logger *slog.Logger, interval time.Duration) *OutboxService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &OutboxService{
		Store:     st,
		Notifier:  notifier,
		Logger:    logger,
		Interval:  interval,
		Retention: 30 * 24 * time.Hour,
		BatchSize: 100,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut it
// down gracefully.
func (s *OutboxService) Start() {
	go s.run()
	s.Logger.Info("outbox service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress drain finishes.
func (s *OutboxService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("outbox service stopped")
}

func (s *OutboxService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Drain anything left over from a previous run straight away.
	s.DrainOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.DrainOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// DrainOnce delivers one batch of pending notifications and purges delivered
// rows past the retention window. A failed delivery leaves the row pending
// for the next pass.
func (s *OutboxService) DrainOnce(ctx context.Context) {
	pending, err := s.Store.Notifications().ListPendingNotifications(ctx, s.BatchSize)
	if err != nil {
		s.Logger.Error("failed to list pending notifications", "error", err)
		return
	}

	var delivered int
	for _, n := range pending {
		if err := s.Notifier.Deliver(ctx, n); err != nil {
			s.Logger.Warn("notification delivery failed",
				"notification_id", n.ID,
				"recipient_id", n.RecipientID,
				"error", err,
			)
			continue
		}
		if err := s.Store.Notifications().MarkNotificationDelivered(ctx, n.ID, time.Now().UTC()); err != nil {
			s.Logger.Error("failed to mark notification delivered",
				"notification_id", n.ID,
				"error", err,
			)
			continue
		}
		delivered++
	}

	cutoff := time.Now().UTC().Add(-s.Retention)
	if err := s.Store.Notifications().DeleteDeliveredBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to purge delivered notifications", "error", err)
	}

	if len(pending) > 0 {
		s.Logger.Debug("outbox drained", "pending", len(pending), "delivered", delivered)
	}
}
