package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/internal/domain/sentiment"
	"github.com/mverse/brandpulse/internal/domain/types"
)

// keyedComponent pairs a component with its source key so strength and
// improvement templates can be selected without string-matching on names.
type keyedComponent struct {
	key       string
	component types.ScoreComponent
}

// Grade thresholds, checked top-down. Monotonic and non-overlapping.
var gradeTable = []struct {
	floor float64
	grade string
}{
	{95, "A+"},
	{90, "A"},
	{85, "B+"},
	{80, "B"},
	{75, "C+"},
	{70, "C"},
	{60, "D"},
}

// Qualitative thresholds on component scores.
const (
	strengthFloor      = 80.0
	improvementCeiling = 50.0
)

// FinalScore scores all five bundles and aggregates them into the complete
// response. Missing sources never depress the score: the weighted average
// is re-normalized over the weight mass that actually reported, and that
// mass becomes the confidence level.
func (c *Calculator) FinalScore(
	artistName string,
	spotify model.SpotifyMetrics,
	youtube model.YouTubeMetrics,
	chartmetric model.ChartmetricMetrics,
	brave model.BraveSearchMetrics,
	agg sentiment.Aggregated,
	aiSummary string,
) types.ArtistScoreResponse {
	components := []keyedComponent{
		{SourceSpotify, c.SpotifyScore(spotify)},
		{SourceYouTube, c.YouTubeScore(youtube)},
		{SourceChartmetric, c.ChartmetricScore(chartmetric)},
		{SourceWebPresence, c.WebPresenceScore(brave)},
		{SourceSentiment, c.SentimentScore(agg)},
	}

	finalScore, confidence := weightedAverage(components)
	grade := ScoreToGrade(finalScore)

	warnings := []string{}
	for _, kc := range components {
		if kc.component.Status == string(model.StatusFailed) {
			warnings = append(warnings, fmt.Sprintf("%s data unavailable: %s", kc.component.Name, kc.component.Reasoning))
		}
	}

	if aiSummary == "" {
		aiSummary = agg.Summary
	}

	sentimentCopy := agg

	return types.ArtistScoreResponse{
		ArtistName: artistName,
		FinalScore: math.Round(finalScore*10) / 10,
		ScoreGrade: grade,
		Breakdown: types.ScoreBreakdown{
			SpotifyScore:     components[0].component,
			YouTubeScore:     components[1].component,
			ChartmetricScore: components[2].component,
			WebPresenceScore: components[3].component,
			SentimentScore:   components[4].component,
		},
		Sentiment:           &sentimentCopy,
		KeyStrengths:        identifyStrengths(components),
		AreasForImprovement: identifyImprovements(components),
		AISummary:           aiSummary,
		DataFreshness:       time.Now().UTC(),
		ConfidenceLevel:     math.Round(confidence*100) / 100,
		Warnings:            warnings,
	}
}

// weightedAverage sums score*weight over components that reported and
// divides by the reported weight mass. When nothing reported both the score
// and the confidence collapse to zero.
func weightedAverage(components []keyedComponent) (score, confidence float64) {
	var total, availableWeight float64
	for _, kc := range components {
		if kc.component.Reported() {
			total += kc.component.NormalizedScore * kc.component.Weight
			availableWeight += kc.component.Weight
		}
	}
	if availableWeight == 0 {
		return 0, 0
	}
	return total / availableWeight, availableWeight
}

// ScoreToGrade maps a 0-100 score onto the letter grade scale.
func ScoreToGrade(score float64) string {
	for _, row := range gradeTable {
		if score >= row.floor {
			return row.grade
		}
	}
	return "F"
}

func identifyStrengths(components []keyedComponent) []string {
	var strengths []string
	for _, kc := range components {
		if kc.component.NormalizedScore < strengthFloor {
			continue
		}
		switch kc.key {
		case SourceSpotify:
			strengths = append(strengths, fmt.Sprintf("Strong Spotify presence (%s)", kc.component.Reasoning))
		case SourceYouTube:
			strengths = append(strengths, fmt.Sprintf("Excellent YouTube engagement (%s)", kc.component.Reasoning))
		case SourceChartmetric:
			strengths = append(strengths, fmt.Sprintf("Strong industry metrics (%s)", kc.component.Reasoning))
		case SourceSentiment:
			strengths = append(strengths, fmt.Sprintf("Positive public sentiment (%s)", kc.component.Reasoning))
		case SourceWebPresence:
			strengths = append(strengths, fmt.Sprintf("High media visibility (%s)", kc.component.Reasoning))
		}
	}
	if len(strengths) == 0 {
		return []string{"Consistent performance across metrics"}
	}
	return strengths
}

// identifyImprovements lists failed sources and weak components. A failed
// component always appears regardless of its score, so a source can show up
// here and nowhere else.
func identifyImprovements(components []keyedComponent) []string {
	var improvements []string
	for _, kc := range components {
		if kc.component.Status == string(model.StatusFailed) {
			improvements = append(improvements, fmt.Sprintf("No %s data available", strings.ReplaceAll(kc.key, "_", " ")))
			continue
		}
		if kc.component.NormalizedScore >= improvementCeiling {
			continue
		}
		switch kc.key {
		case SourceSpotify:
			improvements = append(improvements, "Could benefit from increased Spotify engagement")
		case SourceYouTube:
			improvements = append(improvements, "YouTube presence has room for growth")
		case SourceChartmetric:
			improvements = append(improvements, "Chart performance could be improved")
		case SourceSentiment:
			improvements = append(improvements, "Public sentiment could be more positive")
		case SourceWebPresence:
			improvements = append(improvements, "Limited recent media coverage")
		}
	}
	if len(improvements) == 0 {
		return []string{"No significant concerns identified"}
	}
	return improvements
}
