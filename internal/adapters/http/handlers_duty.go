package httpadapter

import (
	"net/http"
	"strings"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

func (rt *Router) resolveDuty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Query       string `json:"query"`
		HTSCode     string `json:"hts_code"`
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		Force       bool   `json:"force"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	start := time.Now()
	resolved, err := rt.resolver.Resolve(r.Context(), req.Query, req.HTSCode, req.Origin, req.Destination, req.Force)
	if err != nil {
		rt.recordResolution("none", err, 0, start)
		writeError(w, err)
		return
	}
	rt.recordResolution(string(resolved.Source), nil, len(resolved.Breakdown), start)
	writeJSON(w, http.StatusOK, resolved)
}

func (rt *Router) selectCandidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Candidate   domain.ClassificationCandidate `json:"candidate"`
		Origin      string                         `json:"origin"`
		Destination string                         `json:"destination"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	start := time.Now()
	resolved, err := rt.resolver.ResolveSelected(r.Context(), req.Candidate, req.Origin, req.Destination)
	if err != nil {
		rt.recordResolution("none", err, 0, start)
		writeError(w, err)
		return
	}
	rt.recordResolution(string(resolved.Source), nil, len(resolved.Breakdown), start)
	writeJSON(w, http.StatusOK, resolved)
}

func (rt *Router) listCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Query       string `json:"query"`
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		Limit       int    `json:"limit"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > rt.alternatesLimit {
		limit = rt.alternatesLimit
	}

	candidates, err := rt.resolver.Alternates(r.Context(), req.Query, req.Origin, req.Destination, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

func (rt *Router) tradeIntelligence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	destination := strings.TrimSpace(r.URL.Query().Get("destination"))
	if code == "" || destination == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and destination query params are required"})
		return
	}

	intel, err := rt.classifier.TradeIntelligence(r.Context(), code, destination)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intel)
}
