package collectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/pkg/logger"
	"github.com/mverse/brandpulse/pkg/metrics"
)

const (
	chartmetricAPIURL = "https://api.chartmetric.com"

	chartmetricTokenSlack = 60 * time.Second
)

// Chartmetric collects industry rank and cross-platform metrics through the
// Chartmetric API. The refresh token is exchanged for a short-lived JWT which
// is cached across requests.
type Chartmetric struct {
	refreshToken string
	client       *http.Client
	baseURL      string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// ChartmetricOption configures a Chartmetric collector.
type ChartmetricOption func(*Chartmetric)

// WithChartmetricHTTPClient overrides the HTTP client.
func WithChartmetricHTTPClient(c *http.Client) ChartmetricOption {
	return func(cm *Chartmetric) { cm.client = c }
}

// WithChartmetricBaseURL overrides the API endpoint.
func WithChartmetricBaseURL(base string) ChartmetricOption {
	return func(cm *Chartmetric) { cm.baseURL = strings.TrimRight(base, "/") }
}

// NewChartmetric creates a Chartmetric collector.
func NewChartmetric(refreshToken string, opts ...ChartmetricOption) *Chartmetric {
	cm := &Chartmetric{
		refreshToken: refreshToken,
		client:       &http.Client{Timeout: 15 * time.Second},
		baseURL:      chartmetricAPIURL,
	}
	for _, opt := range opts {
		opt(cm)
	}
	return cm
}

// Name returns the source identifier used in metrics and failure messages.
func (cm *Chartmetric) Name() string { return "chartmetric" }

type chartmetricSearchResponse struct {
	Obj struct {
		Artists []struct {
			ID                 int      `json:"id"`
			Name               string   `json:"name"`
			SpMonthlyListeners int      `json:"sp_monthly_listeners"`
			CmArtistScore      *float64 `json:"cm_artist_score"`
		} `json:"artists"`
	} `json:"obj"`
}

type chartmetricArtistResponse struct {
	Obj struct {
		CmArtistRank *int `json:"cm_artist_rank"`
	} `json:"obj"`
}

// Collect resolves the artist and gathers rank, score and monthly-listener
// data. An auth failure or missing artist yields a failed bundle; an artist
// with no signals at all is partial.
func (cm *Chartmetric) Collect(ctx context.Context, artistName string) model.ChartmetricMetrics {
	start := time.Now()
	out := cm.collect(ctx, artistName)
	metrics.RecordCollectorRequest(cm.Name(), string(out.Status))
	metrics.RecordCollectorLatency(cm.Name(), float64(time.Since(start).Milliseconds()))
	return out
}

func (cm *Chartmetric) collect(ctx context.Context, artistName string) model.ChartmetricMetrics {
	token, err := cm.token(ctx)
	if err != nil {
		logger.Get().Warn(ctx, "chartmetric token exchange failed", logger.Error(err))
		return model.FailedChartmetric("Could not authenticate with Chartmetric API")
	}

	params := url.Values{}
	params.Set("q", artistName)
	params.Set("type", "artists")

	var search chartmetricSearchResponse
	err = getJSON(ctx, cm.client, query(cm.baseURL, "/api/search", params),
		map[string]string{"Authorization": "Bearer " + token}, &search)
	if err != nil {
		logger.Get().Warn(ctx, "chartmetric artist search failed",
			logger.String("artist", artistName), logger.Error(err))
		return model.FailedChartmetric(fmt.Sprintf("Could not find Chartmetric artist for %s", artistName))
	}
	if len(search.Obj.Artists) == 0 {
		return model.FailedChartmetric(fmt.Sprintf("Could not find Chartmetric artist for %s", artistName))
	}

	found := search.Obj.Artists[0]
	stats := &model.ChartmetricStats{
		ArtistID:           found.ID,
		SpMonthlyListeners: found.SpMonthlyListeners,
	}
	if found.CmArtistScore != nil {
		stats.ArtistScore = *found.CmArtistScore
	}

	var detail chartmetricArtistResponse
	err = getJSON(ctx, cm.client, fmt.Sprintf("%s/api/artist/%d", cm.baseURL, found.ID),
		map[string]string{"Authorization": "Bearer " + token}, &detail)
	if err != nil {
		logger.Get().Debug(ctx, "chartmetric artist detail unavailable",
			logger.String("artist", artistName), logger.Error(err))
	} else if detail.Obj.CmArtistRank != nil {
		stats.ArtistRank = *detail.Obj.CmArtistRank
	}

	status := model.StatusSuccess
	if stats.ArtistRank == 0 && stats.ArtistScore == 0 && stats.SpMonthlyListeners == 0 {
		status = model.StatusPartial
	}
	return model.ChartmetricMetrics{
		CollectorResult: model.CollectorResult{
			Status:      status,
			CollectedAt: time.Now().UTC(),
		},
		ArtistID:    found.ID,
		ArtistName:  found.Name,
		ArtistStats: stats,
	}
}

// token exchanges the configured refresh token for a JWT, caching it until
// close to expiry.
func (cm *Chartmetric) token(ctx context.Context) (string, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.accessToken != "" && time.Now().Before(cm.tokenExpiry) {
		return cm.accessToken, nil
	}

	body, err := json.Marshal(map[string]string{"refreshtoken": cm.refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cm.baseURL+"/api/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cm.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, string(raw))
	}

	var tok struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.Token == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}
	if tok.ExpiresIn <= 0 {
		tok.ExpiresIn = 3600
	}

	cm.accessToken = tok.Token
	cm.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - chartmetricTokenSlack)
	return cm.accessToken, nil
}
