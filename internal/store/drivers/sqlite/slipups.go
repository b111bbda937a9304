package sqlite

import (
	"context"
	"database/sql"

	"github.com/anchorapp/anchor/internal/domain"
)

type slipUpsRepo struct {
	db dbtx
}

func (r *slipUpsRepo) CreateSlipUp(ctx context.Context, e domain.SlipUpEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO slip_up_events (id, user_id, slip_up_date, recovery_restart_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.UserID,
		dateText(e.SlipUpDate),
		dateText(e.RecoveryRestartDate),
		mapStringNull(e.Notes),
		e.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *slipUpsRepo) ListSlipUpsForUser(ctx context.Context, userID string) ([]domain.SlipUpEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, slip_up_date, recovery_restart_date, notes, created_at
		FROM slip_up_events
		WHERE user_id = ?
		ORDER BY slip_up_date ASC, created_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.SlipUpEvent
	for rows.Next() {
		var (
			e           domain.SlipUpEvent
			slipDate    string
			restartDate string
			notes       sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &slipDate, &restartDate, &notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.SlipUpDate, err = parseDateText(slipDate); err != nil {
			return nil, err
		}
		if e.RecoveryRestartDate, err = parseDateText(restartDate); err != nil {
			return nil, err
		}
		e.Notes = mapNullString(notes)
		events = append(events, e)
	}
	return events, rows.Err()
}
