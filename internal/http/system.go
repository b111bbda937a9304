package http

import (
	"net/http"
	"time"

	"github.com/anchorapp/anchor/internal/store"
	"github.com/anchorapp/anchor/pkg/httpx"
	"github.com/anchorapp/anchor/pkg/slogx"
)

// LivezHandler answers process liveness. It never touches dependencies.
type LivezHandler struct {
	BuildVersion string
	StartTime    time.Time
}

func (h *LivezHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.BuildVersion,
		"uptime":  time.Since(h.StartTime).Round(time.Second).String(),
	})
}

// ReadyzHandler answers readiness: the service is ready once the database
// responds to a ping.
type ReadyzHandler struct {
	Store store.Store
}

func (h *ReadyzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)

	if err := h.Store.Ping(r.Context()); err != nil {
		slogx.FromContext(r.Context()).Warn("readiness check failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}
