package domain

import "time"

// InviteCode is a single-use capability token a sponsor hands to a
// prospective sponsee. Rows are never deleted; consumed codes are the audit
// trail of how each relationship came to be.
//
// ConsumerID and ConsumedAt are both nil or both set. The store enforces the
// transition with a compare-and-set so two redeemers cannot both win.
type InviteCode struct {
	ID      string
	Code    string
	OwnerID string

	CreatedAt time.Time
	ExpiresAt time.Time

	ConsumerID *string
	ConsumedAt *time.Time
}

// Consumed reports whether the code has already been redeemed.
func (c InviteCode) Consumed() bool { return c.ConsumerID != nil }

// Expired reports whether the code is past its expiry at the given instant.
func (c InviteCode) Expired(now time.Time) bool { return now.After(c.ExpiresAt) }
