package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, code, owner_id, created_at, expires_at, consumer_id, consumed_at`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.InviteCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invite_codes (id, code, owner_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		inv.ID, inv.Code, inv.OwnerID, inv.CreatedAt, inv.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes WHERE code = ?`, code)
	return scanInvite(row)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes WHERE id = ?`, id)
	return scanInvite(row)
}

// ConsumeInvite is the compare-and-set that decides double-redemption races:
// the WHERE consumer_id IS NULL clause means exactly one caller can ever
// match the row.
func (r *invitesRepo) ConsumeInvite(ctx context.Context, inviteID, consumerID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invite_codes
		SET consumer_id = ?, consumed_at = ?
		WHERE id = ? AND consumer_id IS NULL`,
		consumerID, at, inviteID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *invitesRepo) ListInvitesByOwner(ctx context.Context, ownerID string) ([]domain.InviteCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invite_codes WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.InviteCode
	for rows.Next() {
		inv, err := scanInviteRows(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func scanInvite(row *sql.Row) (domain.InviteCode, error) {
	var (
		inv        domain.InviteCode
		consumerID sql.NullString
		consumedAt sql.NullTime
	)
	err := row.Scan(&inv.ID, &inv.Code, &inv.OwnerID, &inv.CreatedAt, &inv.ExpiresAt, &consumerID, &consumedAt)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	inv.ConsumerID = mapNullStringPtr(consumerID)
	inv.ConsumedAt = mapNullTimePtr(consumedAt)
	return inv, nil
}

func scanInviteRows(rows *sql.Rows) (domain.InviteCode, error) {
	var (
		inv        domain.InviteCode
		consumerID sql.NullString
		consumedAt sql.NullTime
	)
	err := rows.Scan(&inv.ID, &inv.Code, &inv.OwnerID, &inv.CreatedAt, &inv.ExpiresAt, &consumerID, &consumedAt)
	if err != nil {
		return domain.InviteCode{}, err
	}
	inv.ConsumerID = mapNullStringPtr(consumerID)
	inv.ConsumedAt = mapNullTimePtr(consumedAt)
	return inv, nil
}
