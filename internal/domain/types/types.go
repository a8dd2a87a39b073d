// Package types contains the response shapes shared between the scoring
// engine and the HTTP API.
package types

import (
	"time"

	"github.com/mverse/brandpulse/internal/domain/sentiment"
)

// ScoreComponent is one source's contribution to the composite score.
type ScoreComponent struct {
	Name            string  `json:"name"`
	Weight          float64 `json:"weight"`
	RawValue        float64 `json:"raw_value,omitempty"`
	NormalizedScore float64 `json:"normalized_score"` // always within [0,100]
	Status          string  `json:"status"`           // success, partial, failed
	Reasoning       string  `json:"reasoning"`
}

// Reported reports whether the component carries usable data and should
// participate in the weighted average.
func (c ScoreComponent) Reported() bool {
	return c.Status == "success" || c.Status == "partial"
}

// ScoreBreakdown carries all five component scores.
type ScoreBreakdown struct {
	SpotifyScore     ScoreComponent `json:"spotify_score"`
	YouTubeScore     ScoreComponent `json:"youtube_score"`
	ChartmetricScore ScoreComponent `json:"chartmetric_score"`
	WebPresenceScore ScoreComponent `json:"web_presence_score"`
	SentimentScore   ScoreComponent `json:"sentiment_score"`
}

// Components returns the breakdown in presentation order.
func (b ScoreBreakdown) Components() []ScoreComponent {
	return []ScoreComponent{
		b.SpotifyScore,
		b.YouTubeScore,
		b.ChartmetricScore,
		b.WebPresenceScore,
		b.SentimentScore,
	}
}

// ArtistScoreResponse is the final immutable scoring output.
type ArtistScoreResponse struct {
	ArtistName          string                `json:"artist_name"`
	FinalScore          float64               `json:"final_score"` // 0-100, rounded to 1 decimal
	ScoreGrade          string                `json:"score_grade"` // A+ .. F
	Breakdown           ScoreBreakdown        `json:"breakdown"`
	Sentiment           *sentiment.Aggregated `json:"sentiment,omitempty"`
	KeyStrengths        []string              `json:"key_strengths"`
	AreasForImprovement []string              `json:"areas_for_improvement"`
	AISummary           string                `json:"ai_summary"`
	DataFreshness       time.Time             `json:"data_freshness"`
	ConfidenceLevel     float64               `json:"confidence_level"` // weight mass of non-failed components
	Warnings            []string              `json:"warnings"`
}

// QuickScore is the trimmed response for the quick endpoint.
type QuickScore struct {
	ArtistName string  `json:"artist_name"`
	Score      float64 `json:"score"`
	Grade      string  `json:"grade"`
}
