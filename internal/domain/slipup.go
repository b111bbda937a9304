package domain

import (
	"time"

	"github.com/anchorapp/anchor/pkg/datex"
)

// SlipUpEvent is a logged relapse. Events are immutable once created and are
// ordered by slip-up date for streak computation. The recovery-restart date
// is when the current streak begins again; it may be later than the slip-up
// date (and may even be in the future, in which case it does not affect the
// streak yet).
type SlipUpEvent struct {
	ID     string
	UserID string

	SlipUpDate          datex.Date
	RecoveryRestartDate datex.Date
	Notes               string

	CreatedAt time.Time
}
