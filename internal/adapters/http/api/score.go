// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	service "github.com/mverse/brandpulse/internal/app"
)

// ScoreHandler handles artist scoring requests.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleScorePath dispatches GET /api/v1/score/{artist} and
// GET /api/v1/score/{artist}/quick requests.
func (h *ScoreHandler) HandleScorePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/score/")
	quick := false
	if trimmed, ok := strings.CutSuffix(rest, "/quick"); ok {
		quick = true
		rest = trimmed
	}
	artist, err := url.PathUnescape(rest)
	if err != nil || artist == "" || strings.Contains(artist, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if quick {
		out, err := h.deps.QuickScore(r.Context(), artist)
		if err != nil {
			h.writeScoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	includeBreakdown := true
	if v := r.URL.Query().Get("include_breakdown"); v != "" {
		includeBreakdown = v == "true" || v == "1"
	}

	resp, err := h.deps.ComputeScore(r.Context(), artist, includeBreakdown)
	if err != nil {
		h.writeScoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePostScore handles POST /api/v1/score requests.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidBody)
		return
	}
	if strings.TrimSpace(req.ArtistName) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", service.ErrEmptyArtistName)
		return
	}

	includeBreakdown := true
	if req.IncludeBreakdown != nil {
		includeBreakdown = *req.IncludeBreakdown
	}

	resp, err := h.deps.ComputeScore(r.Context(), req.ArtistName, includeBreakdown)
	if err != nil {
		h.writeScoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScoreHandler) writeScoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrEmptyArtistName) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err)
}
