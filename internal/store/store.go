package store

import (
	"context"
	"errors"
	"time"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/pkg/datex"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a conditional write that matched no row, e.g. a
	// compare-and-set on an invite another redeemer consumed first.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy; invite and
// relationship rows are mutated only through these entry points.
type Store interface {
	Profiles() Profiles
	Invites() Invites
	Relationships() Relationships
	SlipUps() SlipUps
	Notifications() Notifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store. The
	// caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Profiles interface {
	// GetProfileByID returns a profile by id.
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)

	// CreateProfile inserts a new profile (id provided by the app via ULID).
	CreateProfile(ctx context.Context, p domain.Profile) error

	// UpdateDisplayName mutates display_name and bumps updated_at.
	UpdateDisplayName(ctx context.Context, userID, displayName string) error

	// UpdateTimezone sets the stored IANA timezone name ("" clears it).
	UpdateTimezone(ctx context.Context, userID, timezone string) error

	// UpdateSobrietyDate sets the journey-start date (nil clears it).
	UpdateSobrietyDate(ctx context.Context, userID string, d *datex.Date) error
}

type Invites interface {
	// CreateInvite writes a new invite code. Returns ErrAlreadyExists when
	// the generated code string collides with an existing one.
	CreateInvite(ctx context.Context, inv domain.InviteCode) error

	// GetInviteByCode looks up an invite by its normalized code string,
	// consumed or not. Returns ErrNotFound for unknown codes.
	GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error)

	// GetInviteByID returns an invite by id.
	GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error)

	// ConsumeInvite marks the invite consumed by consumerID at the given
	// instant, conditioned on the invite being unconsumed (compare-and-set
	// on consumer_id IS NULL). Returns ErrConflict when another redemption
	// already won.
	ConsumeInvite(ctx context.Context, inviteID, consumerID string, at time.Time) error

	// ListInvitesByOwner returns all codes a user has issued, newest first.
	ListInvitesByOwner(ctx context.Context, ownerID string) ([]domain.InviteCode, error)
}

type Relationships interface {
	// CreateRelationship inserts a new row. The partial unique index on
	// (sponsor_id, sponsee_id) WHERE status='active' is the authority for
	// the duplicate-pair race; violations surface as ErrAlreadyExists.
	CreateRelationship(ctx context.Context, rel domain.Relationship) error

	// GetRelationshipByID returns a relationship by id.
	GetRelationshipByID(ctx context.Context, id string) (domain.Relationship, error)

	// FindActiveByPair returns the active relationship for the directed
	// (sponsor, sponsee) pair, or ErrNotFound.
	FindActiveByPair(ctx context.Context, sponsorID, sponseeID string) (domain.Relationship, error)

	// ListRelationshipsForUser returns every relationship the user is a
	// party to, active first, newest first within status.
	ListRelationshipsForUser(ctx context.Context, userID string) ([]domain.Relationship, error)

	// MarkInactive flips an active row to inactive and stamps
	// disconnected_at. Returns false with a nil error when the row was
	// already inactive, so simultaneous disconnects stay idempotent.
	MarkInactive(ctx context.Context, id string, at time.Time) (bool, error)
}

type SlipUps interface {
	// CreateSlipUp inserts an immutable slip-up event.
	CreateSlipUp(ctx context.Context, e domain.SlipUpEvent) error

	// ListSlipUpsForUser returns a user's slip-ups ordered by slip-up date
	// ascending, the order the streak calculator expects.
	ListSlipUpsForUser(ctx context.Context, userID string) ([]domain.SlipUpEvent, error)
}

type Notifications interface {
	// EnqueueNotification appends a row to the outbox.
	EnqueueNotification(ctx context.Context, n domain.Notification) error

	// ListPendingNotifications returns undelivered rows, oldest first.
	ListPendingNotifications(ctx context.Context, limit int) ([]domain.Notification, error)

	// MarkNotificationDelivered stamps delivered_at.
	MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error

	// DeleteDeliveredBefore purges delivered rows older than cutoff.
	DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) error
}
