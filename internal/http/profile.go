package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/service"
	"github.com/anchorapp/anchor/pkg/anchorsdk"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/httpx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

type ProfileHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet handles GET /v1/profile. A first request for a fresh user
// creates the profile row, seeding the display name from the token.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, anchorsdk.ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Authentication required",
		})
		return
	}

	var displayName string
	if claims, ok := httpx.ClaimsFromContext(ctx); ok {
		displayName = claims.DisplayName
	}

	profile, err := h.ProfileService.Get(ctx, userID, displayName)
	if err != nil {
		log.Error("failed to load profile", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to load profile",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profileResponse(profile))
}

// HandleUpdate handles PATCH /v1/profile. Absent fields are untouched.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, anchorsdk.ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Authentication required",
		})
		return
	}

	var req anchorsdk.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	upd := service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
	}
	if req.SobrietyDate != nil {
		d, err := datex.ParseDate(*req.SobrietyDate)
		if err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "sobriety_date must be YYYY-MM-DD",
			})
			return
		}
		upd.SobrietyDate = &d
	}

	profile, err := h.ProfileService.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimezone) {
			httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "timezone must be a valid IANA name",
			})
			return
		}
		log.Error("failed to update profile", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to update profile",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profileResponse(profile))
}

func profileResponse(p domain.Profile) anchorsdk.ProfileResponse {
	resp := anchorsdk.ProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Timezone:    p.Timezone,
	}
	if p.SobrietyDate != nil {
		resp.SobrietyDate = p.SobrietyDate.String()
	}
	return resp
}
