package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
)

type notificationsRepo struct {
	db dbtx
}

func (r *notificationsRepo) EnqueueNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, type, counterpart_id, relationship_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.RecipientID,
		string(n.Type),
		mapStringNull(n.CounterpartID),
		mapStringNull(n.RelationshipID),
		n.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *notificationsRepo) ListPendingNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, type, counterpart_id, relationship_id, created_at, delivered_at
		FROM notifications
		WHERE delivered_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []domain.Notification
	for rows.Next() {
		var (
			n              domain.Notification
			ntype          string
			counterpartID  sql.NullString
			relationshipID sql.NullString
			deliveredAt    sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &ntype, &counterpartID, &relationshipID, &n.CreatedAt, &deliveredAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(ntype)
		n.CounterpartID = mapNullString(counterpartID)
		n.RelationshipID = mapNullString(relationshipID)
		n.DeliveredAt = mapNullTimePtr(deliveredAt)
		pending = append(pending, n)
	}
	return pending, rows.Err()
}

func (r *notificationsRepo) MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET delivered_at = ? WHERE id = ?`, at, id)
	return err
}

func (r *notificationsRepo) DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE delivered_at IS NOT NULL AND delivered_at < ?`, cutoff)
	return err
}
