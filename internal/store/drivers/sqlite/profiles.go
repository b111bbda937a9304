package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/datex"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, sobriety_date, timezone, created_at, updated_at
		FROM profiles
		WHERE id = ?`, id)
	return scanProfile(row)
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, sobriety_date, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.DisplayName,
		optionalDateText(p.SobrietyDate),
		mapStringNull(p.Timezone),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *profilesRepo) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	return r.update(ctx, userID, `display_name = ?`, displayName)
}

func (r *profilesRepo) UpdateTimezone(ctx context.Context, userID, timezone string) error {
	return r.update(ctx, userID, `timezone = ?`, mapStringNull(timezone))
}

func (r *profilesRepo) UpdateSobrietyDate(ctx context.Context, userID string, d *datex.Date) error {
	return r.update(ctx, userID, `sobriety_date = ?`, optionalDateText(d))
}

func (r *profilesRepo) update(ctx context.Context, userID, set string, value any) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET `+set+`, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (domain.Profile, error) {
	var (
		p        domain.Profile
		sobriety sql.NullString
		timezone sql.NullString
	)
	err := row.Scan(&p.ID, &p.DisplayName, &sobriety, &timezone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}

	p.Timezone = mapNullString(timezone)
	p.SobrietyDate, err = nullDatePtr(sobriety)
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
