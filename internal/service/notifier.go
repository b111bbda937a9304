package service

import (
	"context"
	"log/slog"

	"github.com/anchorapp/anchor/internal/domain"
)

// Notifier hands a notification payload to the delivery subsystem (push,
// email, whatever sits behind it). Delivery is at-least-once and best-effort
// from this service's point of view.
type Notifier interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// The default when no push transport is configured, and handy in dev.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l *LogNotifier) Deliver(ctx context.Context, n domain.Notification) error {
	l.Logger.Info("notification",
		slog.String("recipient_id", n.RecipientID),
		slog.String("type", string(n.Type)),
		slog.String("counterpart_id", n.CounterpartID),
		slog.String("relationship_id", n.RelationshipID),
	)
	return nil
}
