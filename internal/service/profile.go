package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/idx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

var (
	ErrInvalidTimezone = errors.New("unknown timezone name")
	ErrInvalidSlipUp   = errors.New("recovery restart date must not be before the slip-up date")
)

// ProfileService owns profile reads and the mutations the core performs:
// display name, timezone, journey-start date, and slip-up logging.
type ProfileService struct {
	Store store.Store
	Clock datex.Clock
}

// Get returns the user's profile, creating a bare one on first sight so a
// freshly authenticated user always has a row to mutate.
func (s *ProfileService) Get(ctx context.Context, userID, displayName string) (domain.Profile, error) {
	profile, err := s.Store.Profiles().GetProfileByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, err
	}

	now := s.Clock.Now().UTC()
	profile = domain.Profile{
		ID:          userID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Profiles().CreateProfile(ctx, profile); err != nil {
		// Two first requests can race; the second insert loses and rereads.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.Store.Profiles().GetProfileByID(ctx, userID)
		}
		return domain.Profile{}, err
	}

	slogx.FromContext(ctx).Info("profile created", slog.String("user_id", userID))
	return profile, nil
}

// ProfileUpdate carries the optional mutations; nil fields are untouched.
type ProfileUpdate struct {
	DisplayName  *string
	Timezone     *string
	SobrietyDate *datex.Date
}

// Update applies the non-nil fields of upd to the user's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (domain.Profile, error) {
	if upd.Timezone != nil && *upd.Timezone != "" {
		if _, err := time.LoadLocation(*upd.Timezone); err != nil {
			return domain.Profile{}, ErrInvalidTimezone
		}
	}

	repo := s.Store.Profiles()
	if upd.DisplayName != nil {
		if err := repo.UpdateDisplayName(ctx, userID, *upd.DisplayName); err != nil {
			return domain.Profile{}, err
		}
	}
	if upd.Timezone != nil {
		if err := repo.UpdateTimezone(ctx, userID, *upd.Timezone); err != nil {
			return domain.Profile{}, err
		}
	}
	if upd.SobrietyDate != nil {
		if err := repo.UpdateSobrietyDate(ctx, userID, upd.SobrietyDate); err != nil {
			return domain.Profile{}, err
		}
	}

	return repo.GetProfileByID(ctx, userID)
}

// LogSlipUp records an immutable relapse event. The restart date must be on
// or after the slip-up date; a future restart is allowed and simply does not
// affect the streak until it arrives.
func (s *ProfileService) LogSlipUp(ctx context.Context, userID string, slipDate, restartDate datex.Date, notes string) (domain.SlipUpEvent, error) {
	log := slogx.FromContext(ctx)

	if restartDate.Before(slipDate) {
		return domain.SlipUpEvent{}, ErrInvalidSlipUp
	}

	// The owning profile must exist; slip-ups are never orphaned.
	if _, err := s.Store.Profiles().GetProfileByID(ctx, userID); err != nil {
		return domain.SlipUpEvent{}, err
	}

	event := domain.SlipUpEvent{
		ID:                  idx.New().String(),
		UserID:              userID,
		SlipUpDate:          slipDate,
		RecoveryRestartDate: restartDate,
		Notes:               notes,
		CreatedAt:           s.Clock.Now().UTC(),
	}

	if err := s.Store.SlipUps().CreateSlipUp(ctx, event); err != nil {
		log.Error("failed to record slip-up",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return domain.SlipUpEvent{}, err
	}

	log.Info("slip-up logged",
		slog.String("user_id", userID),
		slog.String("slip_up_date", slipDate.String()),
		slog.String("restart_date", restartDate.String()),
	)

	return event, nil
}

// ListSlipUps returns the user's slip-up history, oldest first.
func (s *ProfileService) ListSlipUps(ctx context.Context, userID string) ([]domain.SlipUpEvent, error) {
	return s.Store.SlipUps().ListSlipUpsForUser(ctx, userID)
}
