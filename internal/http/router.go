// Package http wires the service's HTTP surface: handlers, middleware and
// routes under /v1.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anchorapp/anchor/internal/service"
	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/httpx"
	"github.com/anchorapp/anchor/pkg/jwtx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	InviteService       *service.InviteService
	RelationshipService *service.RelationshipService
	StreakService       *service.StreakService
	ProfileService      *service.ProfileService
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerInvites()
	r.registerRelationships()
	r.registerProfile()
	r.registerSlipUps()
	r.registerStreak()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerInvites() {
	issue := &InviteIssueHandler{InviteService: r.InviteService}
	list := &InviteListHandler{InviteService: r.InviteService}
	redeem := &InviteRedeemHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/invites",
		httpx.Chain(issue,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	r.Mux.Handle("GET /v1/invites",
		httpx.Chain(list,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))

	// Redemption is the endpoint worth brute-forcing; strict limit by IP so
	// unauthenticated probing is throttled before token verification.
	r.Mux.Handle("POST /v1/invites/redeem",
		httpx.Chain(redeem,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.AuthnMiddleware(r.verifier),
		))
}

func (r *Router) registerRelationships() {
	h := &RelationshipsHandler{RelationshipService: r.RelationshipService}

	r.Mux.Handle("GET /v1/relationships",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))

	r.Mux.Handle("DELETE /v1/relationships/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDisconnect),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))

	r.Mux.Handle("PATCH /v1/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
}

func (r *Router) registerSlipUps() {
	h := &SlipUpsHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("POST /v1/slipups",
		httpx.Chain(http.HandlerFunc(h.HandleLog),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	r.Mux.Handle("GET /v1/slipups",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
}

func (r *Router) registerStreak() {
	h := &StreakHandler{StreakService: r.StreakService}

	r.Mux.Handle("GET /v1/streak",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", &LivezHandler{BuildVersion: r.buildVersion, StartTime: r.startTime})
	r.Mux.Handle("GET /readyz", &ReadyzHandler{Store: r.store})
}
