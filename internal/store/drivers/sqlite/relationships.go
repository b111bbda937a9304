package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
)

type relationshipsRepo struct {
	db dbtx
}

const relationshipColumns = `id, sponsor_id, sponsee_id, status, connected_at, disconnected_at`

func (r *relationshipsRepo) CreateRelationship(ctx context.Context, rel domain.Relationship) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO relationships (id, sponsor_id, sponsee_id, status, connected_at, disconnected_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rel.ID,
		rel.SponsorID,
		rel.SponseeID,
		string(rel.Status),
		rel.ConnectedAt,
		mapOptionalTime(rel.DisconnectedAt),
	)
	return mapConstraint(err)
}

func (r *relationshipsRepo) GetRelationshipByID(ctx context.Context, id string) (domain.Relationship, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM relationships WHERE id = ?`, id)
	return scanRelationship(row)
}

func (r *relationshipsRepo) FindActiveByPair(ctx context.Context, sponsorID, sponseeID string) (domain.Relationship, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships
		WHERE sponsor_id = ? AND sponsee_id = ? AND status = 'active'`,
		sponsorID, sponseeID)
	return scanRelationship(row)
}

func (r *relationshipsRepo) ListRelationshipsForUser(ctx context.Context, userID string) ([]domain.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships
		WHERE sponsor_id = ? OR sponsee_id = ?
		ORDER BY status ASC, connected_at DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []domain.Relationship
	for rows.Next() {
		var (
			rel            domain.Relationship
			status         string
			disconnectedAt sql.NullTime
		)
		if err := rows.Scan(&rel.ID, &rel.SponsorID, &rel.SponseeID, &status, &rel.ConnectedAt, &disconnectedAt); err != nil {
			return nil, err
		}
		rel.Status = domain.RelationshipStatus(status)
		rel.DisconnectedAt = mapNullTimePtr(disconnectedAt)
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// MarkInactive only matches active rows, so a second disconnect (or two
// near-simultaneous ones) reports false rather than failing.
func (r *relationshipsRepo) MarkInactive(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE relationships
		SET status = 'inactive', disconnected_at = ?
		WHERE id = ? AND status = 'active'`,
		at, id,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanRelationship(row *sql.Row) (domain.Relationship, error) {
	var (
		rel            domain.Relationship
		status         string
		disconnectedAt sql.NullTime
	)
	err := row.Scan(&rel.ID, &rel.SponsorID, &rel.SponseeID, &status, &rel.ConnectedAt, &disconnectedAt)
	if err != nil {
		return domain.Relationship{}, mapNotFound(err)
	}
	rel.Status = domain.RelationshipStatus(status)
	rel.DisconnectedAt = mapNullTimePtr(disconnectedAt)
	return rel, nil
}
