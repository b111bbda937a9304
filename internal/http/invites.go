package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anchorapp/anchor/internal/service"
	"github.com/anchorapp/anchor/pkg/anchorsdk"
	"github.com/anchorapp/anchor/pkg/httpx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

type InviteIssueHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP handles POST /v1/invites: mints a single-use invite code owned
// by the authenticated user.
func (h *InviteIssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	invite, err := h.InviteService.Issue(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrOwnerProfileUnavailable) {
			httpx.WriteJSON(w, http.StatusNotFound, anchorsdk.ErrorResponse{
				Error:            "profile_not_found",
				ErrorDescription: "Complete onboarding before issuing invites",
			})
			return
		}
		log.Error("failed to issue invite", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to create invite",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, anchorsdk.InviteResponse{
		Code:      invite.Code,
		ExpiresAt: invite.ExpiresAt.Unix(),
	})
}

type InviteListHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP handles GET /v1/invites: lists the codes the authenticated user
// has issued, newest first.
func (h *InviteListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	invites, err := h.InviteService.ListIssued(ctx, userID)
	if err != nil {
		log.Error("failed to list invites", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list invites",
		})
		return
	}

	resp := anchorsdk.InvitesResponse{Invites: make([]anchorsdk.InviteDetail, 0, len(invites))}
	for _, inv := range invites {
		detail := anchorsdk.InviteDetail{
			Code:      inv.Code,
			ExpiresAt: inv.ExpiresAt.Unix(),
			CreatedAt: inv.CreatedAt.Unix(),
		}
		if inv.ConsumerID != nil {
			detail.ConsumedBy = *inv.ConsumerID
		}
		if inv.ConsumedAt != nil {
			at := inv.ConsumedAt.Unix()
			detail.ConsumedAt = &at
		}
		resp.Invites = append(resp.Invites, detail)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

type InviteRedeemHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP handles POST /v1/invites/redeem: validates and consumes a code,
// connecting the authenticated user to the code's owner.
func (h *InviteRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var req anchorsdk.RedeemInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}
	if req.Code == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "code is required",
		})
		return
	}

	rel, err := h.InviteService.Redeem(ctx, req.Code, userID)
	if err != nil {
		writeRedeemError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, anchorsdk.RelationshipResponse{
		ID:            rel.ID,
		Status:        string(rel.Status),
		Role:          "sponsee",
		CounterpartID: rel.SponsorID,
		ConnectedAt:   rel.ConnectedAt.Unix(),
	})
}

// writeRedeemError maps each redemption error kind to its one fixed
// user-visible message. Raw store errors never reach the client.
func writeRedeemError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCode):
		httpx.WriteJSON(w, http.StatusNotFound, anchorsdk.ErrorResponse{
			Error:            "invalid_code",
			ErrorDescription: "Invite code not found",
		})
	case errors.Is(err, service.ErrCodeExpired):
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "code_expired",
			ErrorDescription: "This invite code has expired",
		})
	case errors.Is(err, service.ErrCodeAlreadyUsed):
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "code_already_used",
			ErrorDescription: "This invite code has already been used",
		})
	case errors.Is(err, service.ErrSelfConnection):
		httpx.WriteJSON(w, http.StatusBadRequest, anchorsdk.ErrorResponse{
			Error:            "self_connection",
			ErrorDescription: "You cannot redeem your own invite code",
		})
	case errors.Is(err, service.ErrAlreadyConnected):
		httpx.WriteJSON(w, http.StatusConflict, anchorsdk.ErrorResponse{
			Error:            "already_connected",
			ErrorDescription: "You are already connected to this user",
		})
	case errors.Is(err, service.ErrOwnerProfileUnavailable):
		httpx.WriteJSON(w, http.StatusBadGateway, anchorsdk.ErrorResponse{
			Error:            "owner_profile_unavailable",
			ErrorDescription: "The inviting user's profile is unavailable",
		})
	default:
		log.Error("failed to redeem invite", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, anchorsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to redeem invite",
		})
	}
}
