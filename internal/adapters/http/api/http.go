// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mverse/brandpulse/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ComputeScore runs the full scoring pipeline for an artist.
	ComputeScore(ctx context.Context, artistName string, includeDetail bool) (types.ArtistScoreResponse, error)

	// QuickScore returns only the final score and grade.
	QuickScore(ctx context.Context, artistName string) (types.QuickScore, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	scoreHandler  *ScoreHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		scoreHandler:  NewScoreHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("/api/v1/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/api/v1/score", MetricsMiddleware(s.scoreHandler.HandlePostScore, "score_post"))
	mux.HandleFunc("/api/v1/score/", MetricsMiddleware(s.scoreHandler.HandleScorePath, "score"))
}

// scoreRequest mirrors the OpenAPI schema for POST /api/v1/score.
type scoreRequest struct {
	ArtistName       string `json:"artist_name"`
	IncludeBreakdown *bool  `json:"include_breakdown,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
