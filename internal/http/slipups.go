package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anchorapp/anchor/internal/domain"
	"github.com/anchorapp/anchor/internal/service"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/anchorsdk"
	"github.com/anchorapp/anchor/pkg/datex"
	"github.com/anchorapp/anchor/pkg/httpx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

type SlipUpsHandler struct {
	ProfileService *service.ProfileService
}

// HandleLog handles POST /v1/slipups.
func (h *SlipUpsHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
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

	var req anchorsdk.LogSlipUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	slipDate, err := datex.ParseDate(req.SlipUpDate)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "slip_up_date must be YYYY-MM-DD",
		})
		return
	}
	restartDate, err := datex.ParseDate(req.RecoveryRestartDate)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "recovery_restart_date must be YYYY-MM-DD",
		})
		return
	}

	event, err := h.ProfileService.LogSlipUp(ctx, userID, slipDate, restartDate, req.Notes)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, slipUpResponse(event))
	case errors.Is(err, service.ErrInvalidSlipUp):
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "recovery_restart_date must not be before slip_up_date",
		})
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, anchorsdk.ErrorResponse{
			Error:            "profile_not_found",
			ErrorDescription: "Complete onboarding before logging slip-ups",
		})
	default:
		log.Error("failed to log slip-up", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to log slip-up",
		})
	}
}

// HandleList handles GET /v1/slipups, oldest first.
func (h *SlipUpsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.ProfileService.ListSlipUps(ctx, userID)
	if err != nil {
		log.Error("failed to list slip-ups", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list slip-ups",
		})
		return
	}

	resp := anchorsdk.SlipUpsResponse{SlipUps: make([]anchorsdk.SlipUpResponse, 0, len(events))}
	for _, e := range events {
		resp.SlipUps = append(resp.SlipUps, slipUpResponse(e))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func slipUpResponse(e domain.SlipUpEvent) anchorsdk.SlipUpResponse {
	return anchorsdk.SlipUpResponse{
		ID:                  e.ID,
		SlipUpDate:          e.SlipUpDate.String(),
		RecoveryRestartDate: e.RecoveryRestartDate.String(),
		Notes:               e.Notes,
	}
}
