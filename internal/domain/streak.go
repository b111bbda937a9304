package domain

import "github.com/anchorapp/anchor/pkg/datex"

// StreakSummary is the computed sobriety streak shown on the home screen and
// on relationship cards.
type StreakSummary struct {
	// DaysSober counts whole days from CurrentStreakStart to today, never
	// negative.
	DaysSober int

	// JourneyStart is the original sobriety date, clamped to today. Preserved
	// for historical display even after slip-ups.
	JourneyStart datex.Date

	// CurrentStreakStart is the recovery-restart date of the latest effective
	// slip-up, or JourneyStart when none applies yet.
	CurrentStreakStart datex.Date

	HasSlipUps bool
}
