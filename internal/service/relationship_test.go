package service

import (
	"context"
	"testing"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/idx"
	"github.com/stretchr/testify/require"
)

func seedRelationship(t *testing.T, st store.Store, sponsorID, sponseeID string, at time.Time) domain.Relationship {
	t.Helper()

	rel := domain.Relationship{
		ID:          idx.New().String(),
		SponsorID:   sponsorID,
		SponseeID:   sponseeID,
		Status:      domain.RelationshipActive,
		ConnectedAt: at,
	}
	require.NoError(t, st.Relationships().CreateRelationship(context.Background(), rel))
	return rel
}

func TestRelationshipServiceListForUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Date(2024, time.June, 29, 12, 0, 0, 0, time.UTC)
	svc := &RelationshipService{Store: st, Clock: datex.FixedClock{T: now}}

	seedProfile(t, st, "sponsor-1", "Alice")
	seedProfile(t, st, "sponsee-1", "Bob")

	sober := datex.MustParseDate("2024-01-01")
	require.NoError(t, st.Profiles().UpdateSobrietyDate(ctx, "sponsee-1", &sober))

	rel := seedRelationship(t, st, "sponsor-1", "sponsee-1", now.Add(-24*time.Hour))

	t.Run("sponsor sees the sponsee with their streak", func(t *testing.T) {
		views, err := svc.ListForUser(ctx, "sponsor-1", "")
		require.NoError(t, err)
		require.Len(t, views, 1)

		v := views[0]
		require.Equal(t, rel.ID, v.Relationship.ID)
		require.Equal(t, "sponsor", v.Role)
		require.Equal(t, "sponsee-1", v.CounterpartID)
		require.Equal(t, "Bob", v.CounterpartName)
		require.NotNil(t, v.CounterpartStreak)
		require.Equal(t, 180, v.CounterpartStreak.DaysSober)
	})

	t.Run("sponsee sees the sponsor without a streak", func(t *testing.T) {
		views, err := svc.ListForUser(ctx, "sponsee-1", "")
		require.NoError(t, err)
		require.Len(t, views, 1)

		v := views[0]
		require.Equal(t, "sponsee", v.Role)
		require.Equal(t, "sponsor-1", v.CounterpartID)
		require.Equal(t, "Alice", v.CounterpartName)
		// Alice never set a sobriety date.
		require.Nil(t, v.CounterpartStreak)
	})

	t.Run("uninvolved user sees nothing", func(t *testing.T) {
		views, err := svc.ListForUser(ctx, "stranger", "")
		require.NoError(t, err)
		require.Empty(t, views)
	})

	t.Run("inactive relationships keep no streak annotation", func(t *testing.T) {
		_, err := st.Relationships().MarkInactive(ctx, rel.ID, now)
		require.NoError(t, err)

		views, err := svc.ListForUser(ctx, "sponsor-1", "")
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Equal(t, domain.RelationshipInactive, views[0].Relationship.Status)
		require.Nil(t, views[0].CounterpartStreak)
	})
}

func TestRelationshipServiceDisconnect(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 29, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*RelationshipService, store.Store, domain.Relationship) {
		st := newTestStore(t)
		svc := &RelationshipService{Store: st, Clock: datex.FixedClock{T: now}}
		seedProfile(t, st, "sponsor-1", "Alice")
		seedProfile(t, st, "sponsee-1", "Bob")
		rel := seedRelationship(t, st, "sponsor-1", "sponsee-1", now.Add(-24*time.Hour))
		return svc, st, rel
	}

	t.Run("either party may disconnect", func(t *testing.T) {
		for _, requester := range []string{"sponsor-1", "sponsee-1"} {
			svc, st, rel := setup(t)
			require.NoError(t, svc.Disconnect(ctx, rel.ID, requester))

			got, err := st.Relationships().GetRelationshipByID(ctx, rel.ID)
			require.NoError(t, err)
			require.Equal(t, domain.RelationshipInactive, got.Status)
			require.NotNil(t, got.DisconnectedAt)
			require.WithinDuration(t, now, *got.DisconnectedAt, time.Second)
		}
	})

	t.Run("notifies the other party", func(t *testing.T) {
		svc, st, rel := setup(t)
		require.NoError(t, svc.Disconnect(ctx, rel.ID, "sponsor-1"))

		pending, err := st.Notifications().ListPendingNotifications(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, domain.NotificationConnectionEnded, pending[0].Type)
		require.Equal(t, "sponsee-1", pending[0].RecipientID)
		require.Equal(t, rel.ID, pending[0].RelationshipID)
	})

	t.Run("repeat disconnect is a no-op success", func(t *testing.T) {
		svc, st, rel := setup(t)
		require.NoError(t, svc.Disconnect(ctx, rel.ID, "sponsor-1"))
		require.NoError(t, svc.Disconnect(ctx, rel.ID, "sponsee-1"))
		require.NoError(t, svc.Disconnect(ctx, rel.ID, "sponsor-1"))

		// Only the first transition produced a notification.
		pending, err := st.Notifications().ListPendingNotifications(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
	})

	t.Run("non-party is refused", func(t *testing.T) {
		svc, st, rel := setup(t)
		seedProfile(t, st, "stranger", "Mallory")

		err := svc.Disconnect(ctx, rel.ID, "stranger")
		require.ErrorIs(t, err, ErrNotParticipant)

		got, err := st.Relationships().GetRelationshipByID(ctx, rel.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RelationshipActive, got.Status)
	})

	t.Run("unknown relationship", func(t *testing.T) {
		svc, _, _ := setup(t)
		err := svc.Disconnect(ctx, idx.New().String(), "sponsor-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
