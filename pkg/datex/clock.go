package datex

import "time"

// Clock abstracts "now" so expiry and streak logic stay testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock (UTC).
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant. Tests only.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// ResolveLocation returns the first candidate that names a valid IANA
// timezone. Empty and unknown names are skipped; UTC is the final fallback.
//
// Callers pass candidates in preference order: the profile-stored timezone
// first, then the device timezone reported with the request.
func ResolveLocation(candidates ...string) *time.Location {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Today resolves the current calendar day for a user, given their timezone
// candidates in preference order.
func Today(now time.Time, candidates ...string) Date {
	return DateOf(now, ResolveLocation(candidates...))
}
