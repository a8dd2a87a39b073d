package collectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/pkg/logger"
	"github.com/mverse/brandpulse/pkg/metrics"
)

const (
	braveAPIURL = "https://api.search.brave.com"

	braveNewsCount = 20
)

// Brave collects web-presence signals through the Brave Search API: recent
// news coverage plus overall web footprint.
type Brave struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// BraveOption configures a Brave collector.
type BraveOption func(*Brave)

// WithBraveHTTPClient overrides the HTTP client.
func WithBraveHTTPClient(c *http.Client) BraveOption {
	return func(b *Brave) { b.client = c }
}

// WithBraveBaseURL overrides the API endpoint.
func WithBraveBaseURL(base string) BraveOption {
	return func(b *Brave) { b.baseURL = strings.TrimRight(base, "/") }
}

// NewBrave creates a Brave Search collector.
func NewBrave(apiKey string, opts ...BraveOption) *Brave {
	b := &Brave{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: braveAPIURL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the source identifier used in metrics and failure messages.
func (b *Brave) Name() string { return "brave_search" }

type braveNewsResponse struct {
	Results []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Age         string `json:"age"`
		Meta        struct {
			Hostname string `json:"hostname"`
		} `json:"meta_url"`
	} `json:"results"`
}

type braveWebResponse struct {
	Web struct {
		Results []struct {
			URL string `json:"url"`
		} `json:"results"`
	} `json:"web"`
}

// Collect runs a recent-news search and a general web search for the artist.
// Request errors fail the bundle; queries that simply return nothing degrade
// to partial.
func (b *Brave) Collect(ctx context.Context, artistName string) model.BraveSearchMetrics {
	start := time.Now()
	out := b.collect(ctx, artistName)
	metrics.RecordCollectorRequest(b.Name(), string(out.Status))
	metrics.RecordCollectorLatency(b.Name(), float64(time.Since(start).Milliseconds()))
	return out
}

func (b *Brave) collect(ctx context.Context, artistName string) model.BraveSearchMetrics {
	articles, err := b.searchNews(ctx, artistName)
	if err != nil {
		logger.Get().Warn(ctx, "brave news search failed",
			logger.String("artist", artistName), logger.Error(err))
		return model.FailedBrave(fmt.Sprintf("Web presence search failed for %s", artistName))
	}

	webResults, err := b.searchWeb(ctx, artistName)
	if err != nil {
		logger.Get().Debug(ctx, "brave web search unavailable",
			logger.String("artist", artistName), logger.Error(err))
	}

	status := model.StatusSuccess
	errMsg := ""
	if len(articles) == 0 && webResults == 0 {
		status = model.StatusPartial
		errMsg = fmt.Sprintf("Limited web presence found for %s", artistName)
	}

	return model.BraveSearchMetrics{
		CollectorResult: model.CollectorResult{
			Status:       status,
			CollectedAt:  time.Now().UTC(),
			ErrorMessage: errMsg,
		},
		NewsArticles:      articles,
		TotalResultsCount: webResults,
		RecentNewsCount:   len(articles),
	}
}

// searchNews queries news from the past month only, so every hit counts as
// recent coverage.
func (b *Brave) searchNews(ctx context.Context, artistName string) ([]model.NewsArticle, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q music artist", artistName))
	params.Set("count", fmt.Sprintf("%d", braveNewsCount))
	params.Set("freshness", "pm")

	var resp braveNewsResponse
	err := getJSON(ctx, b.client, query(b.baseURL, "/res/v1/news/search", params),
		b.headers(), &resp)
	if err != nil {
		return nil, err
	}

	articles := make([]model.NewsArticle, 0, len(resp.Results))
	for _, r := range resp.Results {
		articles = append(articles, model.NewsArticle{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Source:      r.Meta.Hostname,
			Age:         r.Age,
		})
	}
	return articles, nil
}

func (b *Brave) searchWeb(ctx context.Context, artistName string) (int, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q music artist", artistName))
	params.Set("count", "20")

	var resp braveWebResponse
	err := getJSON(ctx, b.client, query(b.baseURL, "/res/v1/web/search", params),
		b.headers(), &resp)
	if err != nil {
		return 0, err
	}
	return len(resp.Web.Results), nil
}

func (b *Brave) headers() map[string]string {
	return map[string]string{"X-Subscription-Token": b.apiKey}
}
