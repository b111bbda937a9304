package service

import (
	"context"
	"errors"
	"slices"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/datex"
)

// ErrSobrietyDateUnset means the profile has not finished onboarding, so
// there is no journey start to count from.
var ErrSobrietyDateUnset = errors.New("sobriety date not set")

// ComputeStreak turns a journey-start date plus the user's slip-up history
// into the current streak. Pure and deterministic: same inputs, same output.
//
// The current streak starts at the recovery-restart date of the latest
// slip-up (by slip-up date) whose restart is not in the future; with no
// qualifying slip-up it starts at the journey start. A future-dated journey
// start counts as today.
func ComputeStreak(journeyStart datex.Date, slipUps []domain.SlipUpEvent, today datex.Date) domain.StreakSummary {
	start := journeyStart
	if start.After(today) {
		start = today
	}

	sorted := slices.Clone(slipUps)
	slices.SortStableFunc(sorted, func(a, b domain.SlipUpEvent) int {
		return a.SlipUpDate.Compare(b.SlipUpDate)
	})

	streakStart := start
	for _, s := range sorted {
		if !s.RecoveryRestartDate.After(today) {
			streakStart = s.RecoveryRestartDate
		}
	}

	days := streakStart.DaysUntil(today)
	if days < 0 {
		days = 0
	}

	return domain.StreakSummary{
		DaysSober:          days,
		JourneyStart:       start,
		CurrentStreakStart: streakStart,
		HasSlipUps:         len(slipUps) > 0,
	}
}

// StreakService resolves a user's current streak from their profile and
// slip-up history.
type StreakService struct {
	Store store.Store
	Clock datex.Clock
}

// CurrentStreak computes the streak for userID. deviceTimezone is the
// caller-reported timezone, used when the profile has none stored.
func (s *StreakService) CurrentStreak(ctx context.Context, userID, deviceTimezone string) (domain.StreakSummary, error) {
	profile, err := s.Store.Profiles().GetProfileByID(ctx, userID)
	if err != nil {
		return domain.StreakSummary{}, err
	}
	if profile.SobrietyDate == nil {
		return domain.StreakSummary{}, ErrSobrietyDateUnset
	}

	slipUps, err := s.Store.SlipUps().ListSlipUpsForUser(ctx, userID)
	if err != nil {
		return domain.StreakSummary{}, err
	}

	today := datex.Today(s.Clock.Now(), profile.Timezone, deviceTimezone)
	return ComputeStreak(*profile.SobrietyDate, slipUps, today), nil
}
