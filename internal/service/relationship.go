package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/idx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

// ErrNotParticipant means the requester is not one of the two parties on the
// relationship they tried to act on.
var ErrNotParticipant = errors.New("requester is not a party to this relationship")

// RelationshipService governs the relationship lifecycle after redemption:
// listing a user's connections (annotated with the counterpart's streak) and
// disconnecting.
type RelationshipService struct {
	Store store.Store
	Clock datex.Clock
}

// RelationshipView is a relationship as seen by one party, with the
// counterpart resolved and their current streak attached when computable.
type RelationshipView struct {
	Relationship domain.Relationship

	// Role is the viewing user's role on this edge: "sponsor" or "sponsee".
	Role string

	CounterpartID   string
	CounterpartName string

	// CounterpartStreak is nil when the counterpart has no sobriety date yet.
	CounterpartStreak *domain.StreakSummary
}

// ListForUser returns every relationship userID is a party to, each
// annotated with the counterpart and, for active rows, the counterpart's
// current streak. A missing counterpart profile skips the annotation rather
// than failing the whole listing.
func (s *RelationshipService) ListForUser(ctx context.Context, userID, deviceTimezone string) ([]RelationshipView, error) {
	log := slogx.FromContext(ctx)

	rels, err := s.Store.Relationships().ListRelationshipsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	views := make([]RelationshipView, 0, len(rels))
	for _, rel := range rels {
		view := RelationshipView{
			Relationship:  rel,
			CounterpartID: rel.CounterpartOf(userID),
			Role:          "sponsee",
		}
		if rel.SponsorID == userID {
			view.Role = "sponsor"
		}

		counterpart, err := s.Store.Profiles().GetProfileByID(ctx, view.CounterpartID)
		if err != nil {
			log.Warn("counterpart profile unavailable",
				slog.String("relationship_id", rel.ID),
				slog.String("counterpart_id", view.CounterpartID),
				slog.Any("error", err),
			)
			views = append(views, view)
			continue
		}
		view.CounterpartName = counterpart.DisplayName

		if rel.Status == domain.RelationshipActive && counterpart.SobrietyDate != nil {
			slipUps, err := s.Store.SlipUps().ListSlipUpsForUser(ctx, counterpart.ID)
			if err != nil {
				log.Warn("failed to load counterpart slip-ups",
					slog.String("counterpart_id", counterpart.ID),
					slog.Any("error", err),
				)
			} else {
				today := datex.Today(now, counterpart.Timezone, deviceTimezone)
				streak := ComputeStreak(*counterpart.SobrietyDate, slipUps, today)
				view.CounterpartStreak = &streak
			}
		}

		views = append(views, view)
	}

	return views, nil
}

// Disconnect ends a relationship at the request of one of its parties.
// Disconnecting an already-inactive relationship is a no-op success, so two
// parties tapping disconnect at the same time both see success.
func (s *RelationshipService) Disconnect(ctx context.Context, relationshipID, requesterID string) error {
	log := slogx.FromContext(ctx)

	rel, err := s.Store.Relationships().GetRelationshipByID(ctx, relationshipID)
	if err != nil {
		return err
	}

	if !rel.Involves(requesterID) {
		log.Warn("disconnect attempted by non-party",
			slog.String("relationship_id", relationshipID),
			slog.String("requester_id", requesterID),
		)
		return ErrNotParticipant
	}

	if rel.Status == domain.RelationshipInactive {
		return nil
	}

	changed, err := s.Store.Relationships().MarkInactive(ctx, rel.ID, s.Clock.Now().UTC())
	if err != nil {
		log.Error("failed to mark relationship inactive",
			slog.String("relationship_id", rel.ID),
			slog.Any("error", err),
		)
		return err
	}
	if !changed {
		// Lost a race with the other party's disconnect; same outcome.
		return nil
	}

	log.Info("relationship disconnected",
		slog.String("relationship_id", rel.ID),
		slog.String("requester_id", requesterID),
	)

	// Best-effort notice to the other party; never fails the disconnect.
	notice := domain.Notification{
		ID:             idx.New().String(),
		RecipientID:    rel.CounterpartOf(requesterID),
		Type:           domain.NotificationConnectionEnded,
		RelationshipID: rel.ID,
		CreatedAt:      s.Clock.Now().UTC(),
	}
	if err := s.Store.Notifications().EnqueueNotification(ctx, notice); err != nil {
		log.Warn("failed to enqueue disconnect notification",
			slog.String("relationship_id", rel.ID),
			slog.Any("error", err),
		)
	}

	return nil
}
