// internal/api/router.go
package api

import (
	"net/http"

	"github.com/interviewcoach/backend/internal/auth"
)

// RegisterRoutes mounts the session API on mux. Every session route requires
// a bearer token.
func RegisterRoutes(mux *http.ServeMux, h *Handler, authn auth.Authenticator) {
	protect := func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(authn)(fn)
	}

	// Sessions
	mux.Handle("POST /sessions", protect(h.startSession))
	mux.Handle("GET /sessions", protect(h.listSessions))
	mux.Handle("GET /sessions/{sessionID}", protect(h.getSession))
	mux.Handle("POST /sessions/{sessionID}/answers", protect(h.submitAnswer))
	mux.Handle("POST /sessions/{sessionID}/resume", protect(h.resumeSession))
	mux.Handle("GET /sessions/{sessionID}/summary", protect(h.getSummary))
}

// Health reports liveness.
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
