package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/internal/domain/sentiment"
	"github.com/mverse/brandpulse/internal/domain/types"
)

// Source keys used for weights, templates, and breakdown ordering.
const (
	SourceSpotify     = "spotify"
	SourceYouTube     = "youtube"
	SourceChartmetric = "chartmetric"
	SourceSentiment   = "sentiment"
	SourceWebPresence = "web_presence"
)

// thresholds is a calibration range for a normalization curve.
type thresholds struct {
	min float64
	max float64
}

// Blend factors inside each component (fractions of the component's 0-100).
const (
	spotifyPopularityShare = 0.60
	spotifyFollowerShare   = 0.40

	youtubeSubscriberShare = 0.40
	youtubeViewShare       = 0.35
	youtubeEngagementCap   = 25.0 // engagement rate contributes up to 25 points directly

	chartmetricRankShare     = 0.50
	chartmetricScoreShare    = 0.30
	chartmetricListenerShare = 0.20

	sentimentConcernPenalty = 5.0 // points deducted per brand safety concern
)

// Calculator turns raw metric bundles into score components and composes
// them into the final response. It is immutable after construction and safe
// for concurrent use.
type Calculator struct {
	weights map[string]float64

	followerRange   thresholds
	subscriberRange thresholds
	viewRange       thresholds
	listenerRange   thresholds
	newsRange       thresholds
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWeights overrides the per-source weights. Unknown keys are ignored and
// non-positive weights are skipped; the weights are expected to sum to 1.0.
func WithWeights(weights map[string]float64) Option {
	return func(c *Calculator) {
		for source, w := range weights {
			if _, ok := c.weights[source]; ok && w > 0 {
				c.weights[source] = w
			}
		}
	}
}

// NewCalculator creates a Calculator with the default weights and
// calibration ranges.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		weights: map[string]float64{
			SourceSpotify:     0.35,
			SourceYouTube:     0.30,
			SourceChartmetric: 0.25,
			SourceSentiment:   0.07,
			SourceWebPresence: 0.03,
		},
		followerRange:   thresholds{min: 5_000, max: 200_000_000}, // 200M to cover mega-artists
		subscriberRange: thresholds{min: 1_000, max: 50_000_000},
		viewRange:       thresholds{min: 10_000, max: 100_000_000},
		listenerRange:   thresholds{min: 10_000, max: 100_000_000},
		newsRange:       thresholds{min: 1, max: 50},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Weight returns the static weight assigned to a source key.
func (c *Calculator) Weight(source string) float64 { return c.weights[source] }

// SpotifyScore blends platform popularity with log-normalized follower count.
func (c *Calculator) SpotifyScore(data model.SpotifyMetrics) types.ScoreComponent {
	if data.Failed() || data.ArtistStats == nil {
		return c.failedComponent("Spotify", SourceSpotify, data.ErrorMessage, "Unable to retrieve Spotify data")
	}

	stats := data.ArtistStats

	// Popularity is already on a 0-100 scale.
	popularityPart := float64(stats.Popularity) * spotifyPopularityShare

	followerScore := LogNormalize(float64(stats.Followers), c.followerRange.min, c.followerRange.max)
	followerPart := followerScore * spotifyFollowerShare

	return types.ScoreComponent{
		Name:            "Spotify",
		Weight:          c.weights[SourceSpotify],
		RawValue:        float64(stats.Popularity),
		NormalizedScore: clampScore(popularityPart + followerPart),
		Status:          string(model.StatusSuccess),
		Reasoning: fmt.Sprintf("Popularity: %d/100, Followers: %s",
			stats.Popularity, humanize.Comma(int64(stats.Followers))),
	}
}

// YouTubeScore blends log-normalized subscribers and average views with the
// engagement rate, which contributes directly up to youtubeEngagementCap.
func (c *Calculator) YouTubeScore(data model.YouTubeMetrics) types.ScoreComponent {
	if data.Failed() || data.ChannelStats == nil {
		return c.failedComponent("YouTube", SourceYouTube, data.ErrorMessage, "Unable to retrieve YouTube data")
	}

	stats := data.ChannelStats

	subScore := LogNormalize(float64(stats.SubscriberCount), c.subscriberRange.min, c.subscriberRange.max)
	subPart := subScore * youtubeSubscriberShare

	viewScore := LogNormalize(stats.AvgViewsPerVideo, c.viewRange.min, c.viewRange.max)
	viewPart := viewScore * youtubeViewShare

	engagementPart := math.Min(stats.EngagementRate, youtubeEngagementCap)

	return types.ScoreComponent{
		Name:            "YouTube",
		Weight:          c.weights[SourceYouTube],
		RawValue:        float64(stats.SubscriberCount),
		NormalizedScore: clampScore(subPart + viewPart + engagementPart),
		Status:          string(model.StatusSuccess),
		Reasoning: fmt.Sprintf("Subscribers: %s, Avg Views: %s, Engagement: %.1f%%",
			humanize.Comma(int64(stats.SubscriberCount)),
			humanize.Comma(int64(stats.AvgViewsPerVideo)),
			stats.EngagementRate),
	}
}

// ChartmetricScore blends whichever of rank, proprietary score, and monthly
// listeners are present; each sub-signal fills only its own slice. With no
// sub-signals at all the component falls back to a neutral 50 with partial
// status.
func (c *Calculator) ChartmetricScore(data model.ChartmetricMetrics) types.ScoreComponent {
	if data.Failed() || data.ArtistStats == nil {
		return c.failedComponent("Chartmetric", SourceChartmetric, data.ErrorMessage, "Unable to retrieve Chartmetric data")
	}

	stats := data.ArtistStats
	var total float64
	var reasons []string
	filled := false

	if stats.ArtistRank > 0 {
		total += rankToScore(stats.ArtistRank) * chartmetricRankShare
		reasons = append(reasons, fmt.Sprintf("Global Rank: #%s", humanize.Comma(int64(stats.ArtistRank))))
		filled = true
	}
	if stats.ArtistScore > 0 {
		total += stats.ArtistScore * chartmetricScoreShare
		reasons = append(reasons, fmt.Sprintf("CM Score: %.1f", stats.ArtistScore))
		filled = true
	}
	if stats.SpMonthlyListeners > 0 {
		mlScore := LogNormalize(float64(stats.SpMonthlyListeners), c.listenerRange.min, c.listenerRange.max)
		total += mlScore * chartmetricListenerShare
		reasons = append(reasons, fmt.Sprintf("Monthly Listeners: %s", humanize.Comma(int64(stats.SpMonthlyListeners))))
		filled = true
	}

	if !filled {
		return types.ScoreComponent{
			Name:            "Chartmetric",
			Weight:          c.weights[SourceChartmetric],
			NormalizedScore: 50,
			Status:          string(model.StatusPartial),
			Reasoning:       "Limited Chartmetric data available",
		}
	}

	return types.ScoreComponent{
		Name:            "Chartmetric",
		Weight:          c.weights[SourceChartmetric],
		RawValue:        float64(stats.ArtistRank),
		NormalizedScore: clampScore(total),
		Status:          string(model.StatusSuccess),
		Reasoning:       strings.Join(reasons, ", "),
	}
}

// rankToScore converts a global rank (1 = best) into a 0-100 score. The
// curve is piecewise: top-10 ranks map almost directly under 100, then the
// slope flattens per decade down to a floor of 20.
func rankToScore(rank int) float64 {
	r := float64(rank)
	switch {
	case rank <= 10:
		return 100 - (r - 1) // 1 -> 100, 10 -> 91
	case rank <= 100:
		return 90 - ((r - 10) / 90 * 10) // 10 -> 90, 100 -> 80
	case rank <= 1000:
		return 80 - ((r - 100) / 900 * 20) // 100 -> 80, 1000 -> 60
	default:
		return math.Max(60-((r-1000)/9000*40), 20)
	}
}

// WebPresenceScore linear-normalizes the recent news article count. A
// reachable source with zero articles yields a partial component, not a
// failure.
func (c *Calculator) WebPresenceScore(data model.BraveSearchMetrics) types.ScoreComponent {
	if data.Failed() {
		return c.failedComponent("Web Presence", SourceWebPresence, data.ErrorMessage, "Unable to retrieve web presence data")
	}

	newsScore := LinearNormalize(float64(data.RecentNewsCount), c.newsRange.min, c.newsRange.max)

	status := model.StatusSuccess
	if data.RecentNewsCount == 0 {
		status = model.StatusPartial
	}

	return types.ScoreComponent{
		Name:            "Web Presence",
		Weight:          c.weights[SourceWebPresence],
		RawValue:        float64(data.RecentNewsCount),
		NormalizedScore: newsScore,
		Status:          string(status),
		Reasoning:       fmt.Sprintf("%d recent news articles found", data.RecentNewsCount),
	}
}

// SentimentScore maps the [-1,1] sentiment verdict onto [0,100], weights it
// by the analyzer's confidence, and deducts a fixed penalty per brand
// safety concern, flooring at zero.
func (c *Calculator) SentimentScore(agg sentiment.Aggregated) types.ScoreComponent {
	baseScore := (agg.OverallScore + 1) * 50
	weightedScore := baseScore * agg.Confidence

	penalty := float64(len(agg.BrandSafetyConcerns)) * sentimentConcernPenalty
	finalScore := math.Max(weightedScore-penalty, 0)

	status := model.StatusSuccess
	if agg.SampleSize == 0 {
		status = model.StatusPartial
	}

	return types.ScoreComponent{
		Name:            "Sentiment",
		Weight:          c.weights[SourceSentiment],
		RawValue:        agg.OverallScore,
		NormalizedScore: clampScore(finalScore),
		Status:          string(status),
		Reasoning: fmt.Sprintf("%s, Confidence: %.0f%%, Sample: %d articles",
			categoryLabel(agg.OverallCategory), agg.Confidence*100, agg.SampleSize),
	}
}

// categoryLabel turns "very_positive" into "Very Positive".
func categoryLabel(cat sentiment.Category) string {
	words := strings.Split(string(cat), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (c *Calculator) failedComponent(name, source, errMsg, fallback string) types.ScoreComponent {
	reasoning := errMsg
	if reasoning == "" {
		reasoning = fallback
	}
	return types.ScoreComponent{
		Name:      name,
		Weight:    c.weights[source],
		Status:    string(model.StatusFailed),
		Reasoning: reasoning,
	}
}
