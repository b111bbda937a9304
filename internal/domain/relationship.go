package domain

import "time"

type RelationshipStatus string

const (
	RelationshipActive   RelationshipStatus = "active"
	RelationshipInactive RelationshipStatus = "inactive"
)

// Relationship is a directed sponsor→sponsee edge. Inactive is terminal for a
// row: reconnecting the same pair creates a fresh row, preserving history.
// At most one active row may exist per (sponsor, sponsee) pair; the store's
// partial unique index is the authority under races.
type Relationship struct {
	ID        string
	SponsorID string
	SponseeID string
	Status    RelationshipStatus

	ConnectedAt    time.Time
	DisconnectedAt *time.Time
}

// Involves reports whether userID is one of the two parties.
func (r Relationship) Involves(userID string) bool {
	return r.SponsorID == userID || r.SponseeID == userID
}

// CounterpartOf returns the other party's id, or "" when userID is not a
// party at all.
func (r Relationship) CounterpartOf(userID string) string {
	switch userID {
	case r.SponsorID:
		return r.SponseeID
	case r.SponseeID:
		return r.SponsorID
	default:
		return ""
	}
}
