package domain

import (
	"time"

	"github.com/anchorapp/anchor/pkg/datex"
)

// Profile is a user of the app. Profiles are created at onboarding and never
// hard-deleted; relationship history must keep resolving both parties.
type Profile struct {
	ID          string
	DisplayName string

	// SobrietyDate is the journey-start date. Nil until onboarding completes.
	SobrietyDate *datex.Date

	// Timezone is an IANA name ("Australia/Sydney"). Empty means the device
	// timezone supplied with each request decides, falling back to UTC.
	Timezone string

	CreatedAt time.Time
	UpdatedAt time.Time
}
