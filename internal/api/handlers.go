package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"visits/internal/app"
	"visits/internal/buildinfo"
	"visits/internal/store"
)

// HealthHandler reports liveness and build identity.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler reports whether the persistence backend answers. An empty
// store is still ready.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Store.Load(r.Context()); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeProblem(w, r, http.StatusServiceUnavailable, "store unavailable", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ScreenHandler returns the current screen projection.
func (s *Server) ScreenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, s.Runtime.Screen())
}

// StateHandler exposes the raw state for debugging.
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, s.Runtime.State())
}

// ActionsHandler injects a user action. Internal actions (network
// completions, SDK callbacks) are rejected; only the runtime produces
// those.
func (s *Server) ActionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	var sa app.ScreenAction
	if err := json.NewDecoder(r.Body).Decode(&sa); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	act, ok := app.FromScreenAction(sa)
	if !ok {
		writeProblem(w, r, http.StatusBadRequest, "unknown action", "not a user action: "+sa.Type)
		return
	}
	s.Runtime.Dispatch(act)
	writeAccepted(w, map[string]any{"accepted": true, "action": act.Name()})
}

type deepLinkRequest struct {
	URL string `json:"url"`
}

// DeepLinkHandler hands a deep-link URL to the app, exactly as the platform
// would on continue-user-activity.
func (s *Server) DeepLinkHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	var req deepLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if req.URL == "" {
		writeProblem(w, r, http.StatusBadRequest, "url required", "")
		return
	}
	s.Runtime.Dispatch(app.DeepLinkOpened{URL: req.URL})
	writeAccepted(w, map[string]any{"accepted": true})
}
