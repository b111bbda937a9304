// Package anchorsdk holds the API request/response shapes and a thin HTTP
// client for the anchor service. Handlers marshal these types, so the SDK
// and the server cannot drift apart.
package anchorsdk

// ErrorResponse is the standard error envelope returned by every endpoint.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g. "code_expired").
	Error string `json:"error"`

	// ErrorDescription is the fixed human-readable message for that code.
	ErrorDescription string `json:"error_description"`
}

// InviteResponse is returned from POST /v1/invites.
type InviteResponse struct {
	// Code is the 8-character invite code to hand to the prospective sponsee.
	Code string `json:"code"`

	// ExpiresAt is the Unix timestamp the code stops being redeemable.
	ExpiresAt int64 `json:"expires_at"`
}

// InviteDetail is one issued code with its redemption state, as listed by
// GET /v1/invites.
type InviteDetail struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`

	// ConsumedBy is the redeeming user's id once the code has been used.
	ConsumedBy string `json:"consumed_by,omitempty"`
	ConsumedAt *int64 `json:"consumed_at,omitempty"`
}

// InvitesResponse wraps the listing.
type InvitesResponse struct {
	Invites []InviteDetail `json:"invites"`
}

// RedeemInviteRequest is the body for POST /v1/invites/redeem.
type RedeemInviteRequest struct {
	// Code is the invite code as typed by the user; the server normalizes
	// whitespace and case.
	Code string `json:"code"`

	// DeviceTimezone is the caller's IANA timezone name, used when the
	// profile has none stored.
	DeviceTimezone string `json:"device_timezone,omitempty"`
}

// RelationshipResponse describes one relationship from the caller's side.
type RelationshipResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	// Role is the caller's role on this edge: "sponsor" or "sponsee".
	Role string `json:"role"`

	CounterpartID   string `json:"counterpart_id"`
	CounterpartName string `json:"counterpart_name,omitempty"`

	ConnectedAt    int64  `json:"connected_at"`
	DisconnectedAt *int64 `json:"disconnected_at,omitempty"`

	// CounterpartStreak is present for active relationships whose
	// counterpart has a sobriety date.
	CounterpartStreak *StreakResponse `json:"counterpart_streak,omitempty"`
}

// RelationshipsResponse wraps the listing.
type RelationshipsResponse struct {
	Relationships []RelationshipResponse `json:"relationships"`
}

// StreakResponse is the computed sobriety streak.
type StreakResponse struct {
	DaysSober          int    `json:"days_sober"`
	JourneyStart       string `json:"journey_start"`
	CurrentStreakStart string `json:"current_streak_start"`
	HasSlipUps         bool   `json:"has_slip_ups"`
}

// ProfileResponse is the caller's own profile.
type ProfileResponse struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	SobrietyDate string `json:"sobriety_date,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

// UpdateProfileRequest is the body for PATCH /v1/profile. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
	SobrietyDate *string `json:"sobriety_date,omitempty"`
}

// LogSlipUpRequest is the body for POST /v1/slipups.
type LogSlipUpRequest struct {
	SlipUpDate          string `json:"slip_up_date"`
	RecoveryRestartDate string `json:"recovery_restart_date"`
	Notes               string `json:"notes,omitempty"`
}

// SlipUpResponse is one logged slip-up.
type SlipUpResponse struct {
	ID                  string `json:"id"`
	SlipUpDate          string `json:"slip_up_date"`
	RecoveryRestartDate string `json:"recovery_restart_date"`
	Notes               string `json:"notes,omitempty"`
}

// SlipUpsResponse wraps the listing.
type SlipUpsResponse struct {
	SlipUps []SlipUpResponse `json:"slip_ups"`
}
