// Package model contains the raw metric bundles passed between collectors
// and the scoring layer.
package model

import "time"

// Status reports how a collection attempt ended.
type Status string

// Collection outcomes.
const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// CollectorResult is embedded by every per-source metric bundle. A bundle is
// immutable once produced and scoped to a single scoring request.
type CollectorResult struct {
	Status       Status    `json:"status"`
	CollectedAt  time.Time `json:"collected_at"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Failed reports whether the collection attempt failed outright.
func (r CollectorResult) Failed() bool { return r.Status == StatusFailed }

// SpotifyArtistStats holds the streaming-platform signals used for scoring.
type SpotifyArtistStats struct {
	Followers  int      `json:"followers"`
	Popularity int      `json:"popularity"` // 0-100 platform popularity
	Genres     []string `json:"genres"`
}

// SpotifyMetrics is the streaming-platform bundle.
type SpotifyMetrics struct {
	CollectorResult
	ArtistID               string              `json:"artist_id,omitempty"`
	ArtistName             string              `json:"artist_name,omitempty"`
	ArtistStats            *SpotifyArtistStats `json:"artist_stats,omitempty"`
	TopTracksAvgPopularity float64             `json:"top_tracks_avg_popularity,omitempty"`
}

// YouTubeChannelStats holds the video-platform signals used for scoring.
type YouTubeChannelStats struct {
	SubscriberCount  int     `json:"subscriber_count"`
	ViewCount        int     `json:"view_count"`
	VideoCount       int     `json:"video_count"`
	AvgViewsPerVideo float64 `json:"avg_views_per_video"`
	EngagementRate   float64 `json:"engagement_rate"` // estimated from views vs subscribers
}

// YouTubeMetrics is the video-platform bundle.
type YouTubeMetrics struct {
	CollectorResult
	ChannelID    string               `json:"channel_id,omitempty"`
	ChannelName  string               `json:"channel_name,omitempty"`
	ChannelStats *YouTubeChannelStats `json:"channel_stats,omitempty"`
}

// ChartmetricStats holds the analytics-platform signals. Any subset of the
// optional fields may be present; zero means absent.
type ChartmetricStats struct {
	ArtistID           int     `json:"cm_artist_id"`
	ArtistRank         int     `json:"cm_artist_rank,omitempty"`  // global rank, 1 = top artist
	ArtistScore        float64 `json:"cm_artist_score,omitempty"` // proprietary 0-100 score
	SpMonthlyListeners int     `json:"sp_monthly_listeners,omitempty"`
}

// ChartmetricMetrics is the analytics-platform bundle.
type ChartmetricMetrics struct {
	CollectorResult
	ArtistID    int               `json:"artist_id,omitempty"`
	ArtistName  string            `json:"artist_name,omitempty"`
	ArtistStats *ChartmetricStats `json:"artist_stats,omitempty"`
	ChartCount  int               `json:"chart_count,omitempty"`
}

// NewsArticle is a single news hit from the web-presence search.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	Age         string `json:"age,omitempty"` // e.g. "2 days ago"
}

// BraveSearchMetrics is the web-presence bundle.
type BraveSearchMetrics struct {
	CollectorResult
	NewsArticles      []NewsArticle `json:"news_articles"`
	TotalResultsCount int           `json:"total_results_count"`
	RecentNewsCount   int           `json:"recent_news_count"`
}

// FailedSpotify builds a failure-status streaming bundle carrying msg.
func FailedSpotify(msg string) SpotifyMetrics {
	return SpotifyMetrics{CollectorResult: failedResult(msg)}
}

// FailedYouTube builds a failure-status video bundle carrying msg.
func FailedYouTube(msg string) YouTubeMetrics {
	return YouTubeMetrics{CollectorResult: failedResult(msg)}
}

// FailedChartmetric builds a failure-status analytics bundle carrying msg.
func FailedChartmetric(msg string) ChartmetricMetrics {
	return ChartmetricMetrics{CollectorResult: failedResult(msg)}
}

// FailedBrave builds a failure-status web-presence bundle carrying msg.
func FailedBrave(msg string) BraveSearchMetrics {
	return BraveSearchMetrics{
		CollectorResult: failedResult(msg),
		NewsArticles:    []NewsArticle{},
	}
}

func failedResult(msg string) CollectorResult {
	return CollectorResult{
		Status:       StatusFailed,
		CollectedAt:  time.Now().UTC(),
		ErrorMessage: msg,
	}
}
