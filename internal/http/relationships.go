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

type RelationshipsHandler struct {
	RelationshipService *service.RelationshipService
}

// HandleList handles GET /v1/relationships.
func (h *RelationshipsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	views, err := h.RelationshipService.ListForUser(ctx, userID, r.URL.Query().Get("device_timezone"))
	if err != nil {
		log.Error("failed to list relationships", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list relationships",
		})
		return
	}

	resp := anchorsdk.RelationshipsResponse{
		Relationships: make([]anchorsdk.RelationshipResponse, 0, len(views)),
	}
	for _, v := range views {
		resp.Relationships = append(resp.Relationships, relationshipResponse(v))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDisconnect handles DELETE /v1/relationships/{id}. Repeating the call
// on an already ended relationship still returns 204.
func (h *RelationshipsHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
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

	relationshipID := r.PathValue("id")

	err := h.RelationshipService.Disconnect(ctx, relationshipID, userID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, anchorsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Relationship not found",
		})
	case errors.Is(err, service.ErrNotParticipant):
		httpx.WriteJSON(w, http.StatusForbidden, anchorsdk.ErrorResponse{
			Error:            "forbidden",
			ErrorDescription: "You are not a party to this relationship",
		})
	default:
		log.Error("failed to disconnect relationship", "err", err, "relationship_id", relationshipID)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to disconnect relationship",
		})
	}
}

func relationshipResponse(v service.RelationshipView) anchorsdk.RelationshipResponse {
	rel := v.Relationship

	resp := anchorsdk.RelationshipResponse{
		ID:              rel.ID,
		Status:          string(rel.Status),
		Role:            v.Role,
		CounterpartID:   v.CounterpartID,
		CounterpartName: v.CounterpartName,
		ConnectedAt:     rel.ConnectedAt.Unix(),
	}
	if rel.DisconnectedAt != nil {
		at := rel.DisconnectedAt.Unix()
		resp.DisconnectedAt = &at
	}
	if v.CounterpartStreak != nil {
		resp.CounterpartStreak = &anchorsdk.StreakResponse{
			DaysSober:          v.CounterpartStreak.DaysSober,
			JourneyStart:       v.CounterpartStreak.JourneyStart.String(),
			CurrentStreakStart: v.CounterpartStreak.CurrentStreakStart.String(),
			HasSlipUps:         v.CounterpartStreak.HasSlipUps,
		}
	}
	return resp
}
