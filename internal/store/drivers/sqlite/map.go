package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anchorapp/anchor/pkg/datex"
)

// Calendar dates are stored as YYYY-MM-DD text so lexical comparison in SQL
// matches chronological order.

func dateText(d datex.Date) string { return d.String() }

func parseDateText(s string) (datex.Date, error) {
	d, err := datex.ParseDate(s)
	if err != nil {
		return datex.Date{}, fmt.Errorf("sqlite: bad stored date %q: %w", s, err)
	}
	return d, nil
}

func optionalDateText(d *datex.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullDatePtr(ns sql.NullString) (*datex.Date, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := parseDateText(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
