package sqlite

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

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func mustCreateProfile(t *testing.T, st *Store, id, name string) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, st.Profiles().CreateProfile(context.Background(), domain.Profile{
		ID:          id,
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

func mustCreateInvite(t *testing.T, st *Store, code, ownerID string) domain.InviteCode {
	t.Helper()

	now := time.Now().UTC()
	inv := domain.InviteCode{
		ID:        idx.New().String(),
		Code:      code,
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, st.Invites().CreateInvite(context.Background(), inv))
	return inv
}

func TestProfilesRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	mustCreateProfile(t, st, "user-1", "Alice")

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := st.Profiles().CreateProfile(ctx, domain.Profile{
			ID: "user-1", DisplayName: "Imposter",
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := st.Profiles().GetProfileByID(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("sobriety date survives the round trip", func(t *testing.T) {
		sober := datex.MustParseDate("2024-01-01")
		require.NoError(t, st.Profiles().UpdateSobrietyDate(ctx, "user-1", &sober))

		p, err := st.Profiles().GetProfileByID(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, p.SobrietyDate)
		require.Equal(t, sober, *p.SobrietyDate)

		require.NoError(t, st.Profiles().UpdateSobrietyDate(ctx, "user-1", nil))
		p, err = st.Profiles().GetProfileByID(ctx, "user-1")
		require.NoError(t, err)
		require.Nil(t, p.SobrietyDate)
	})
}

func TestInvitesRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	mustCreateProfile(t, st, "owner-1", "Alice")

	t.Run("code strings are unique", func(t *testing.T) {
		mustCreateInvite(t, st, "AAAA2222", "owner-1")
		err := st.Invites().CreateInvite(ctx, domain.InviteCode{
			ID: idx.New().String(), Code: "AAAA2222", OwnerID: "owner-1",
			CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(time.Hour),
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("consume is first-winner-takes-all", func(t *testing.T) {
		inv := mustCreateInvite(t, st, "BBBB3333", "owner-1")
		at := time.Now().UTC()

		require.NoError(t, st.Invites().ConsumeInvite(ctx, inv.ID, "redeemer-1", at))
		err := st.Invites().ConsumeInvite(ctx, inv.ID, "redeemer-2", at)
		require.ErrorIs(t, err, store.ErrConflict)

		got, err := st.Invites().GetInviteByID(ctx, inv.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ConsumerID)
		require.Equal(t, "redeemer-1", *got.ConsumerID)
		require.NotNil(t, got.ConsumedAt)
	})

	t.Run("lookup by code returns consumed rows too", func(t *testing.T) {
		got, err := st.Invites().GetInviteByCode(ctx, "BBBB3333")
		require.NoError(t, err)
		require.True(t, got.Consumed())
	})

	t.Run("list by owner is newest first", func(t *testing.T) {
		invites, err := st.Invites().ListInvitesByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(invites), 2)
		for i := 1; i < len(invites); i++ {
			require.False(t, invites[i].CreatedAt.After(invites[i-1].CreatedAt))
		}
	})
}

func TestRelationshipsRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	mustCreateProfile(t, st, "sponsor-1", "Alice")
	mustCreateProfile(t, st, "sponsee-1", "Bob")

	now := time.Now().UTC()
	rel := domain.Relationship{
		ID:          idx.New().String(),
		SponsorID:   "sponsor-1",
		SponseeID:   "sponsee-1",
		Status:      domain.RelationshipActive,
		ConnectedAt: now,
	}
	require.NoError(t, st.Relationships().CreateRelationship(ctx, rel))

	t.Run("second active row for the same pair is rejected", func(t *testing.T) {
		dup := rel
		dup.ID = idx.New().String()
		err := st.Relationships().CreateRelationship(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("self-sponsorship is rejected by the schema", func(t *testing.T) {
		err := st.Relationships().CreateRelationship(ctx, domain.Relationship{
			ID:        idx.New().String(),
			SponsorID: "sponsor-1", SponseeID: "sponsor-1",
			Status: domain.RelationshipActive, ConnectedAt: now,
		})
		require.Error(t, err)
	})

	t.Run("find active by pair is directional", func(t *testing.T) {
		got, err := st.Relationships().FindActiveByPair(ctx, "sponsor-1", "sponsee-1")
		require.NoError(t, err)
		require.Equal(t, rel.ID, got.ID)

		_, err = st.Relationships().FindActiveByPair(ctx, "sponsee-1", "sponsor-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("mark inactive is idempotent", func(t *testing.T) {
		at := now.Add(time.Hour)

		changed, err := st.Relationships().MarkInactive(ctx, rel.ID, at)
		require.NoError(t, err)
		require.True(t, changed)

		changed, err = st.Relationships().MarkInactive(ctx, rel.ID, at.Add(time.Hour))
		require.NoError(t, err)
		require.False(t, changed)

		got, err := st.Relationships().GetRelationshipByID(ctx, rel.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RelationshipInactive, got.Status)
		// The timestamp of the first transition sticks.
		require.WithinDuration(t, at, *got.DisconnectedAt, time.Second)
	})

	t.Run("an inactive row frees the pair for a new active one", func(t *testing.T) {
		fresh := domain.Relationship{
			ID:          idx.New().String(),
			SponsorID:   "sponsor-1",
			SponseeID:   "sponsee-1",
			Status:      domain.RelationshipActive,
			ConnectedAt: now.Add(2 * time.Hour),
		}
		require.NoError(t, st.Relationships().CreateRelationship(ctx, fresh))

		rels, err := st.Relationships().ListRelationshipsForUser(ctx, "sponsor-1")
		require.NoError(t, err)
		require.Len(t, rels, 2)
		// Active rows sort ahead of inactive ones.
		require.Equal(t, domain.RelationshipActive, rels[0].Status)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	mustCreateProfile(t, st, "owner-1", "Alice")
	inv := mustCreateInvite(t, st, "CCCC4444", "owner-1")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().ConsumeInvite(ctx, inv.ID, "redeemer-1", time.Now().UTC()); err != nil {
			return err
		}
		// Force a constraint failure after the consume.
		return tx.Relationships().CreateRelationship(ctx, domain.Relationship{
			ID:        idx.New().String(),
			SponsorID: "owner-1", SponseeID: "owner-1",
			Status: domain.RelationshipActive, ConnectedAt: time.Now().UTC(),
		})
	})
	require.Error(t, err)

	// The consume must have rolled back with the failed insert.
	got, err := st.Invites().GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	require.False(t, got.Consumed())
}

func TestNotificationsRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	mustCreateProfile(t, st, "user-1", "Alice")

	now := time.Now().UTC()
	old := domain.Notification{
		ID: idx.New().String(), RecipientID: "user-1",
		Type: domain.NotificationConnectionRequest, CreatedAt: now.Add(-time.Hour),
	}
	fresh := domain.Notification{
		ID: idx.New().String(), RecipientID: "user-1",
		Type: domain.NotificationConnectionEnded, CreatedAt: now,
	}
	require.NoError(t, st.Notifications().EnqueueNotification(ctx, old))
	require.NoError(t, st.Notifications().EnqueueNotification(ctx, fresh))

	t.Run("pending listing is oldest first and bounded", func(t *testing.T) {
		pending, err := st.Notifications().ListPendingNotifications(ctx, 1)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, old.ID, pending[0].ID)
	})

	t.Run("delivered rows leave the pending set", func(t *testing.T) {
		require.NoError(t, st.Notifications().MarkNotificationDelivered(ctx, old.ID, now))

		pending, err := st.Notifications().ListPendingNotifications(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, fresh.ID, pending[0].ID)
	})

	t.Run("purge removes only old delivered rows", func(t *testing.T) {
		require.NoError(t, st.Notifications().DeleteDeliveredBefore(ctx, now.Add(time.Minute)))

		var count int
		require.NoError(t, st.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM notifications WHERE id = ?`, old.ID).Scan(&count))
		require.Zero(t, count)

		// The undelivered row survives any cutoff.
		pending, err := st.Notifications().ListPendingNotifications(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
	})
}
