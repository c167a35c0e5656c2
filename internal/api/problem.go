package api

import (
	"encoding/json"
	"net/http"
)

// Problem is the RFC7807 body every rejected request gets. Instance carries
// the request path so a client juggling screen, action, and deep-link calls
// can tell which one failed.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	writeJSON(w, status, Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

// writeAccepted acknowledges input that was queued for the reducer but not
// yet applied; the outcome shows up on the screen stream.
func writeAccepted(w http.ResponseWriter, v map[string]any) {
	writeJSON(w, http.StatusAccepted, v)
}
