package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/cryptox"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/idx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

var (
	ErrInvalidCode             = errors.New("invite code not found")
	ErrCodeExpired             = errors.New("invite code has expired")
	ErrCodeAlreadyUsed         = errors.New("invite code has already been used")
	ErrSelfConnection          = errors.New("cannot redeem your own invite code")
	ErrAlreadyConnected        = errors.New("an active connection already exists with this user")
	ErrOwnerProfileUnavailable = errors.New("the inviting user's profile is unavailable")
	ErrRelationshipWriteFailed = errors.New("failed to record the connection")
)

const (
	// InviteCodeLength is fixed; 8 characters of the unambiguous alphabet
	// balance brute-force resistance against manual transcription.
	InviteCodeLength = cryptox.DefaultCodeLength

	// InviteTTL is the fixed validity window for issued codes.
	InviteTTL = 30 * 24 * time.Hour

	// createAttempts bounds retries when a freshly generated code collides
	// with an existing one. At 31^8 codes a single retry is already rare.
	createAttempts = 3
)

// InviteService owns the invite-code lifecycle: a sponsor issues a code, a
// prospective sponsee redeems it, and redemption creates the relationship.
type InviteService struct {
	Store store.Store
	Clock datex.Clock
}

// Issue creates a new single-use invite code owned by ownerID. Issuance
// never checks existing relationships (the world can change before
// redemption) and never notifies anyone.
func (s *InviteService) Issue(ctx context.Context, ownerID string) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	// The owner must exist; everything else is validated at redemption.
	if _, err := s.Store.Profiles().GetProfileByID(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite issuance by unknown profile", slog.String("owner_id", ownerID))
			return domain.InviteCode{}, ErrOwnerProfileUnavailable
		}
		log.Error("failed to fetch issuing profile", slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	now := s.Clock.Now().UTC()

	var inv domain.InviteCode
	for attempt := 0; ; attempt++ {
		code, err := cryptox.GenerateCode(InviteCodeLength)
		if err != nil {
			log.Error("failed to generate invite code", slog.Any("error", err))
			return domain.InviteCode{}, err
		}

		inv = domain.InviteCode{
			ID:        idx.New().String(),
			Code:      code,
			OwnerID:   ownerID,
			CreatedAt: now,
			ExpiresAt: now.Add(InviteTTL),
		}

		err = s.Store.Invites().CreateInvite(ctx, inv)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrAlreadyExists) && attempt < createAttempts-1 {
			continue
		}
		log.Error("failed to create invite",
			slog.String("invite_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.InviteCode{}, err
	}

	log.Debug("invite issued",
		slog.String("invite_id", inv.ID),
		slog.String("owner_id", ownerID),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return inv, nil
}

// ListIssued returns every code ownerID has issued, newest first, consumed
// or not. The consumed entries double as the sponsor's connection history.
func (s *InviteService) ListIssued(ctx context.Context, ownerID string) ([]domain.InviteCode, error) {
	return s.Store.Invites().ListInvitesByOwner(ctx, ownerID)
}

// redeemSnapshot is the state a redemption is validated against: one invite
// fetch, one redeemer, one instant. Keeping the checks pure over a snapshot
// makes their order explicit and independently testable.
type redeemSnapshot struct {
	invite     domain.InviteCode
	redeemerID string
	now        time.Time
}

// redeemChecks run in order; the first failure short-circuits. The order is
// part of the observable contract: cheapest and most general first, so error
// messages stay informative without leaking unrelated state.
var redeemChecks = []struct {
	name  string
	check func(redeemSnapshot) error
}{
	{"expiry", func(s redeemSnapshot) error {
		if s.invite.Expired(s.now) {
			return ErrCodeExpired
		}
		return nil
	}},
	{"single-use", func(s redeemSnapshot) error {
		if s.invite.Consumed() {
			return ErrCodeAlreadyUsed
		}
		return nil
	}},
	{"self-connection", func(s redeemSnapshot) error {
		if s.invite.OwnerID == s.redeemerID {
			return ErrSelfConnection
		}
		return nil
	}},
}

// Redeem validates and atomically consumes a code, creating an active
// relationship with the code's owner as sponsor and redeemerID as sponsee.
//
// The snapshot checks are a fast path; under races the store decides:
// consumption is a compare-and-set on consumer_id, and the active-pair
// unique index guards duplicate relationships at commit time.
func (s *InviteService) Redeem(ctx context.Context, rawCode, redeemerID string) (domain.Relationship, error) {
	log := slogx.FromContext(ctx)

	code := cryptox.NormalizeCode(rawCode)
	invite, err := s.Store.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("redemption attempted with unknown code", slog.String("redeemer_id", redeemerID))
			return domain.Relationship{}, ErrInvalidCode
		}
		log.Error("failed to fetch invite", slog.Any("error", err))
		return domain.Relationship{}, err
	}

	snapshot := redeemSnapshot{invite: invite, redeemerID: redeemerID, now: s.Clock.Now().UTC()}
	for _, c := range redeemChecks {
		if err := c.check(snapshot); err != nil {
			log.Warn("invite redemption rejected",
				slog.String("invite_id", invite.ID),
				slog.String("check", c.name),
				slog.String("reason", err.Error()),
			)
			return domain.Relationship{}, err
		}
	}

	// Duplicate pre-check. Purely a UX fast path: the unique index at commit
	// is authoritative when two redemptions race onto the same pair.
	_, err = s.Store.Relationships().FindActiveByPair(ctx, invite.OwnerID, redeemerID)
	if err == nil {
		return domain.Relationship{}, ErrAlreadyConnected
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check existing relationship", slog.Any("error", err))
		return domain.Relationship{}, err
	}

	owner, err := s.Store.Profiles().GetProfileByID(ctx, invite.OwnerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite owner profile missing", slog.String("owner_id", invite.OwnerID))
			return domain.Relationship{}, ErrOwnerProfileUnavailable
		}
		log.Error("failed to fetch owner profile", slog.Any("error", err))
		return domain.Relationship{}, err
	}

	rel := domain.Relationship{
		ID:          idx.New().String(),
		SponsorID:   owner.ID,
		SponseeID:   redeemerID,
		Status:      domain.RelationshipActive,
		ConnectedAt: snapshot.now,
	}

	// Consume the code and insert the relationship as one atomic unit.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().ConsumeInvite(ctx, invite.ID, redeemerID, snapshot.now); err != nil {
			return err
		}
		return tx.Relationships().CreateRelationship(ctx, rel)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			// Another redemption won the compare-and-set.
			return domain.Relationship{}, ErrCodeAlreadyUsed
		case errors.Is(err, store.ErrAlreadyExists):
			// The active-pair index fired at commit time.
			return domain.Relationship{}, ErrAlreadyConnected
		default:
			log.Error("failed to commit redemption",
				slog.String("invite_id", invite.ID),
				slog.Any("error", err),
			)
			return domain.Relationship{}, ErrRelationshipWriteFailed
		}
	}

	log.Info("invite redeemed",
		slog.String("invite_id", invite.ID),
		slog.String("relationship_id", rel.ID),
		slog.String("sponsor_id", rel.SponsorID),
		slog.String("sponsee_id", rel.SponseeID),
	)

	// Best-effort, post-commit: a failed enqueue must never undo the
	// connection, so errors are logged and swallowed.
	s.enqueueConnectionNotices(ctx, rel)

	return rel, nil
}

func (s *InviteService) enqueueConnectionNotices(ctx context.Context, rel domain.Relationship) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now().UTC()

	notices := []domain.Notification{
		{
			ID:            idx.New().String(),
			RecipientID:   rel.SponsorID,
			Type:          domain.NotificationConnectionRequest,
			CounterpartID: rel.SponseeID,
			CreatedAt:     now,
		},
		{
			ID:            idx.New().String(),
			RecipientID:   rel.SponseeID,
			Type:          domain.NotificationConnectionRequest,
			CounterpartID: rel.SponsorID,
			CreatedAt:     now,
		},
	}

	for _, n := range notices {
		if err := s.Store.Notifications().EnqueueNotification(ctx, n); err != nil {
			log.Warn("failed to enqueue connection notification",
				slog.String("recipient_id", n.RecipientID),
				slog.Any("error", err),
			)
		}
	}
}
