package service

import (
	"context"
	"testing"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store/drivers/sqlite"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/idx"
	"github.com/stretchr/testify/require"
)

func slipUp(slip, restart string) domain.SlipUpEvent {
	return domain.SlipUpEvent{
		ID:                  idx.New().String(),
		SlipUpDate:          datex.MustParseDate(slip),
		RecoveryRestartDate: datex.MustParseDate(restart),
	}
}

func TestComputeStreak(t *testing.T) {
	t.Parallel()

	today := datex.MustParseDate("2024-06-29")

	t.Run("no slip-ups counts from journey start", func(t *testing.T) {
		got := ComputeStreak(datex.MustParseDate("2024-01-01"), nil, today)
		require.Equal(t, 180, got.DaysSober)
		require.Equal(t, datex.MustParseDate("2024-01-01"), got.JourneyStart)
		require.Equal(t, datex.MustParseDate("2024-01-01"), got.CurrentStreakStart)
		require.False(t, got.HasSlipUps)
	})

	t.Run("latest slip-up restart wins", func(t *testing.T) {
		slips := []domain.SlipUpEvent{
			slipUp("2024-03-10", "2024-03-11"),
			slipUp("2024-05-01", "2024-06-01"),
		}
		got := ComputeStreak(datex.MustParseDate("2024-01-01"), slips, today)
		require.Equal(t, 28, got.DaysSober)
		require.Equal(t, datex.MustParseDate("2024-01-01"), got.JourneyStart)
		require.Equal(t, datex.MustParseDate("2024-06-01"), got.CurrentStreakStart)
		require.True(t, got.HasSlipUps)
	})

	t.Run("unordered input gives the same answer", func(t *testing.T) {
		slips := []domain.SlipUpEvent{
			slipUp("2024-05-01", "2024-06-01"),
			slipUp("2024-03-10", "2024-03-11"),
		}
		got := ComputeStreak(datex.MustParseDate("2024-01-01"), slips, today)
		require.Equal(t, 28, got.DaysSober)
	})

	t.Run("future restart does not count yet", func(t *testing.T) {
		slips := []domain.SlipUpEvent{
			slipUp("2024-03-10", "2024-03-11"),
			slipUp("2024-06-20", "2024-07-15"),
		}
		got := ComputeStreak(datex.MustParseDate("2024-01-01"), slips, today)
		// The pending restart is ignored; the March one still applies.
		require.Equal(t, datex.MustParseDate("2024-03-11"), got.CurrentStreakStart)
		require.Equal(t, 110, got.DaysSober)
		require.True(t, got.HasSlipUps)
	})

	t.Run("restart today means zero days", func(t *testing.T) {
		slips := []domain.SlipUpEvent{slipUp("2024-06-28", "2024-06-29")}
		got := ComputeStreak(datex.MustParseDate("2024-01-01"), slips, today)
		require.Equal(t, 0, got.DaysSober)
		require.Equal(t, today, got.CurrentStreakStart)
	})

	t.Run("future journey start clamps to today", func(t *testing.T) {
		got := ComputeStreak(datex.MustParseDate("2024-07-04"), nil, today)
		require.Equal(t, 0, got.DaysSober)
		require.Equal(t, today, got.JourneyStart)
		require.Equal(t, today, got.CurrentStreakStart)
	})

	t.Run("deterministic for equal inputs", func(t *testing.T) {
		slips := []domain.SlipUpEvent{
			slipUp("2024-02-01", "2024-02-02"),
			slipUp("2024-04-01", "2024-04-02"),
		}
		first := ComputeStreak(datex.MustParseDate("2024-01-01"), slips, today)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, ComputeStreak(datex.MustParseDate("2024-01-01"), slips, today))
		}
	})
}

func TestStreakServiceCurrentStreak(t *testing.T) {
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	// Fixed instant: 2024-06-29 15:00 UTC, which is already the 30th in Sydney.
	clock := datex.FixedClock{T: time.Date(2024, time.June, 29, 15, 0, 0, 0, time.UTC)}
	svc := &StreakService{Store: st, Clock: clock}

	sober := datex.MustParseDate("2024-01-01")
	require.NoError(t, st.Profiles().CreateProfile(ctx, domain.Profile{
		ID:           "user-sober",
		DisplayName:  "Alice",
		SobrietyDate: &sober,
		CreatedAt:    clock.Now(),
		UpdatedAt:    clock.Now(),
	}))
	require.NoError(t, st.Profiles().CreateProfile(ctx, domain.Profile{
		ID:          "user-fresh",
		DisplayName: "Bob",
		CreatedAt:   clock.Now(),
		UpdatedAt:   clock.Now(),
	}))

	t.Run("computes streak from profile and history", func(t *testing.T) {
		got, err := svc.CurrentStreak(ctx, "user-sober", "")
		require.NoError(t, err)
		require.Equal(t, 180, got.DaysSober)
	})

	t.Run("device timezone shifts today when profile has none", func(t *testing.T) {
		got, err := svc.CurrentStreak(ctx, "user-sober", "Australia/Sydney")
		require.NoError(t, err)
		// One extra local day has already started in Sydney.
		require.Equal(t, 181, got.DaysSober)
	})

	t.Run("slip-ups reset the count", func(t *testing.T) {
		e := domain.SlipUpEvent{
			ID:                  idx.New().String(),
			UserID:              "user-sober",
			SlipUpDate:          datex.MustParseDate("2024-05-01"),
			RecoveryRestartDate: datex.MustParseDate("2024-06-01"),
			CreatedAt:           clock.Now(),
		}
		require.NoError(t, st.SlipUps().CreateSlipUp(ctx, e))

		got, err := svc.CurrentStreak(ctx, "user-sober", "")
		require.NoError(t, err)
		require.Equal(t, 28, got.DaysSober)
		require.True(t, got.HasSlipUps)
	})

	t.Run("unset sobriety date is a distinct error", func(t *testing.T) {
		_, err := svc.CurrentStreak(ctx, "user-fresh", "")
		require.ErrorIs(t, err, ErrSobrietyDateUnset)
	})
}
