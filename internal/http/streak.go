package http

import (
	"errors"
	"net/http"

	"github.com/anchorapp/anchor/internal/service"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/anchorsdk"
	"github.com/anchorapp/anchor/pkg/httpx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

type StreakHandler struct {
	StreakService *service.StreakService
}

// ServeHTTP handles GET /v1/streak. The optional device_timezone query
// parameter decides "today" when the profile has no stored timezone.
func (h *StreakHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.StreakService.CurrentStreak(ctx, userID, r.URL.Query().Get("device_timezone"))
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, anchorsdk.StreakResponse{
			DaysSober:          summary.DaysSober,
			JourneyStart:       summary.JourneyStart.String(),
			CurrentStreakStart: summary.CurrentStreakStart.String(),
			HasSlipUps:         summary.HasSlipUps,
		})
	case errors.Is(err, service.ErrSobrietyDateUnset):
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "sobriety_date_unset",
			ErrorDescription: "Set a sobriety date before requesting the streak",
		})
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, anchorsdk.ErrorResponse{
			Error:            "profile_not_found",
			ErrorDescription: "Complete onboarding before requesting the streak",
		})
	default:
		log.Error("failed to compute streak", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to compute streak",
		})
	}
}
