package httpadapter

import (
	"net/http"
	"strings"

	"github.com/atulgupta100/tariff-watch/internal/core/usecase"
)

// suggest drives the per-session partial-code suggestion panel. POST registers
// a keystroke, GET polls the panel state, DELETE dismisses the panel and drops
// the session engine.
func (rt *Router) suggest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.suggestInput(w, r)
	case http.MethodGet:
		rt.suggestPoll(w, r)
	case http.MethodDelete:
		rt.suggestDismiss(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) suggestInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID   string `json:"session_id"`
		Input       string `json:"input"`
		Query       string `json:"query"`
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	engine := rt.suggestions.Engine(req.SessionID)
	engine.OnInput(req.Input, usecase.SuggestionContext{
		Query:       req.Query,
		Origin:      req.Origin,
		Destination: req.Destination,
	})

	snap := engine.Snapshot()
	if rt.metrics != nil {
		rt.metrics.RecordSuggestion(serviceName, string(snap.State), len(snap.Candidates))
	}
	writeJSON(w, http.StatusAccepted, snap)
}

func (rt *Router) suggestPoll(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id query param is required"})
		return
	}
	writeJSON(w, http.StatusOK, rt.suggestions.Engine(sessionID).Snapshot())
}

func (rt *Router) suggestDismiss(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id query param is required"})
		return
	}
	rt.suggestions.Drop(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
