package collectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/pkg/logger"
	"github.com/mverse/brandpulse/pkg/metrics"
)

const (
	youtubeAPIURL = "https://www.googleapis.com/youtube/v3"

	// Engagement rate is recent average views as a share of subscribers,
	// capped so a viral spike cannot dominate the channel score.
	youtubeEngagementCap = 100.0
	youtubeRecentVideos  = 10
)

// YouTube collects channel statistics and recent-video engagement through
// the YouTube Data API v3.
type YouTube struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// YouTubeOption configures a YouTube collector.
type YouTubeOption func(*YouTube)

// WithYouTubeHTTPClient overrides the HTTP client.
func WithYouTubeHTTPClient(c *http.Client) YouTubeOption {
	return func(y *YouTube) { y.client = c }
}

// WithYouTubeBaseURL overrides the API endpoint.
func WithYouTubeBaseURL(base string) YouTubeOption {
	return func(y *YouTube) { y.baseURL = strings.TrimRight(base, "/") }
}

// NewYouTube creates a YouTube collector.
func NewYouTube(apiKey string, opts ...YouTubeOption) *YouTube {
	y := &YouTube{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: youtubeAPIURL,
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the source identifier used in metrics and failure messages.
func (y *YouTube) Name() string { return "youtube" }

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeChannelsResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Collect finds the artist's channel and gathers its statistics. No channel
// means a failed bundle; a channel without usable statistics is partial, and
// engagement data is attached best-effort.
func (y *YouTube) Collect(ctx context.Context, artistName string) model.YouTubeMetrics {
	start := time.Now()
	out := y.collect(ctx, artistName)
	metrics.RecordCollectorRequest(y.Name(), string(out.Status))
	metrics.RecordCollectorLatency(y.Name(), float64(time.Since(start).Milliseconds()))
	return out
}

func (y *YouTube) collect(ctx context.Context, artistName string) model.YouTubeMetrics {
	channelID, err := y.findChannel(ctx, artistName)
	if err != nil {
		logger.Get().Warn(ctx, "youtube channel search failed",
			logger.String("artist", artistName), logger.Error(err))
		return model.FailedYouTube(fmt.Sprintf("Could not find YouTube channel for %s", artistName))
	}
	if channelID == "" {
		return model.FailedYouTube(fmt.Sprintf("Could not find YouTube channel for %s", artistName))
	}

	stats, title, err := y.channelStats(ctx, channelID)
	if err != nil || stats == nil {
		if err != nil {
			logger.Get().Warn(ctx, "youtube channel stats failed",
				logger.String("channel_id", channelID), logger.Error(err))
		}
		return model.YouTubeMetrics{
			CollectorResult: model.CollectorResult{
				Status:      model.StatusPartial,
				CollectedAt: time.Now().UTC(),
			},
			ChannelID:   channelID,
			ChannelName: title,
		}
	}

	if rate, err := y.engagementRate(ctx, channelID, stats.SubscriberCount); err == nil {
		stats.EngagementRate = rate
	} else {
		logger.Get().Debug(ctx, "youtube engagement rate unavailable",
			logger.String("channel_id", channelID), logger.Error(err))
	}

	return model.YouTubeMetrics{
		CollectorResult: model.CollectorResult{
			Status:      model.StatusSuccess,
			CollectedAt: time.Now().UTC(),
		},
		ChannelID:    channelID,
		ChannelName:  title,
		ChannelStats: stats,
	}
}

// findChannel searches a couple of query variants and picks the best match,
// preferring channels whose title matches the artist name exactly.
func (y *YouTube) findChannel(ctx context.Context, artistName string) (string, error) {
	queries := []string{artistName, artistName + " official"}
	var fallback string
	var lastErr error

	for _, q := range queries {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("type", "channel")
		params.Set("q", q)
		params.Set("maxResults", "5")
		params.Set("key", y.apiKey)

		var resp youtubeSearchResponse
		if err := getJSON(ctx, y.client, query(y.baseURL, "/search", params), nil, &resp); err != nil {
			lastErr = err
			continue
		}
		for _, item := range resp.Items {
			if item.ID.ChannelID == "" {
				continue
			}
			if strings.EqualFold(item.Snippet.Title, artistName) {
				return item.ID.ChannelID, nil
			}
			if fallback == "" {
				fallback = item.ID.ChannelID
			}
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", lastErr
}

func (y *YouTube) channelStats(ctx context.Context, channelID string) (*model.YouTubeChannelStats, string, error) {
	params := url.Values{}
	params.Set("part", "statistics,snippet")
	params.Set("id", channelID)
	params.Set("key", y.apiKey)

	var resp youtubeChannelsResponse
	if err := getJSON(ctx, y.client, query(y.baseURL, "/channels", params), nil, &resp); err != nil {
		return nil, "", err
	}
	if len(resp.Items) == 0 {
		return nil, "", nil
	}

	title := resp.Items[0].Snippet.Title
	st := resp.Items[0].Statistics
	subs, _ := strconv.Atoi(st.SubscriberCount)
	views, _ := strconv.Atoi(st.ViewCount)
	videos, _ := strconv.Atoi(st.VideoCount)
	if subs == 0 && views == 0 {
		return nil, title, nil
	}

	avgViews := float64(views) / float64(max(videos, 1))
	return &model.YouTubeChannelStats{
		SubscriberCount:  subs,
		ViewCount:        views,
		VideoCount:       videos,
		AvgViewsPerVideo: avgViews,
	}, title, nil
}

// engagementRate samples the channel's most recent uploads and reports their
// average view count as a percentage of the subscriber base.
func (y *YouTube) engagementRate(ctx context.Context, channelID string, subscribers int) (float64, error) {
	params := url.Values{}
	params.Set("part", "id")
	params.Set("channelId", channelID)
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("maxResults", strconv.Itoa(youtubeRecentVideos))
	params.Set("key", y.apiKey)

	var search youtubeSearchResponse
	if err := getJSON(ctx, y.client, query(y.baseURL, "/search", params), nil, &search); err != nil {
		return 0, err
	}
	var ids []string
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("no recent videos")
	}

	params = url.Values{}
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", y.apiKey)

	var videos youtubeVideosResponse
	if err := getJSON(ctx, y.client, query(y.baseURL, "/videos", params), nil, &videos); err != nil {
		return 0, err
	}
	if len(videos.Items) == 0 {
		return 0, fmt.Errorf("no video statistics")
	}

	var totalViews int
	for _, v := range videos.Items {
		views, _ := strconv.Atoi(v.Statistics.ViewCount)
		totalViews += views
	}
	avg := float64(totalViews) / float64(len(videos.Items))
	rate := avg / float64(max(subscribers, 1)) * 100
	return min(rate, youtubeEngagementCap), nil
}
