package collectors

import (
	"context"
	"encoding/base64"
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
	spotifyAccountsURL = "https://accounts.spotify.com"
	spotifyAPIURL      = "https://api.spotify.com"

	// Refresh the client-credentials token slightly before Spotify expires
	// it so in-flight requests never race the expiry.
	spotifyTokenSlack = 60 * time.Second
)

// Spotify collects follower, popularity and catalog metrics through the
// Spotify Web API using the client-credentials flow.
type Spotify struct {
	clientID     string
	clientSecret string
	client       *http.Client
	accountsURL  string
	apiURL       string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// SpotifyOption configures a Spotify collector.
type SpotifyOption func(*Spotify)

// WithSpotifyHTTPClient overrides the HTTP client.
func WithSpotifyHTTPClient(c *http.Client) SpotifyOption {
	return func(s *Spotify) { s.client = c }
}

// WithSpotifyBaseURLs overrides the accounts and API endpoints.
func WithSpotifyBaseURLs(accounts, api string) SpotifyOption {
	return func(s *Spotify) {
		s.accountsURL = strings.TrimRight(accounts, "/")
		s.apiURL = strings.TrimRight(api, "/")
	}
}

// NewSpotify creates a Spotify collector.
func NewSpotify(clientID, clientSecret string, opts ...SpotifyOption) *Spotify {
	s := &Spotify{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: 15 * time.Second},
		accountsURL:  spotifyAccountsURL,
		apiURL:       spotifyAPIURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier used in metrics and failure messages.
func (s *Spotify) Name() string { return "spotify" }

type spotifySearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

type spotifyArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
}

type spotifyTopTracksResponse struct {
	Tracks []struct {
		Popularity int `json:"popularity"`
	} `json:"tracks"`
}

// Collect resolves the artist by name and gathers profile plus top-track
// metrics. A missing artist or auth failure yields a failed bundle; losing
// only the top-tracks call degrades to partial.
func (s *Spotify) Collect(ctx context.Context, artistName string) model.SpotifyMetrics {
	start := time.Now()
	out := s.collect(ctx, artistName)
	metrics.RecordCollectorRequest(s.Name(), string(out.Status))
	metrics.RecordCollectorLatency(s.Name(), float64(time.Since(start).Milliseconds()))
	return out
}

func (s *Spotify) collect(ctx context.Context, artistName string) model.SpotifyMetrics {
	token, err := s.token(ctx)
	if err != nil {
		logger.Get().Warn(ctx, "spotify token request failed", logger.Error(err))
		return model.FailedSpotify("Could not authenticate with Spotify API")
	}

	artist, err := s.searchArtist(ctx, token, artistName)
	if err != nil {
		logger.Get().Warn(ctx, "spotify artist search failed",
			logger.String("artist", artistName), logger.Error(err))
		return model.FailedSpotify(fmt.Sprintf("Could not find Spotify artist for %s", artistName))
	}
	if artist == nil {
		return model.FailedSpotify(fmt.Sprintf("Could not find Spotify artist for %s", artistName))
	}

	result := model.SpotifyMetrics{
		CollectorResult: model.CollectorResult{
			Status:      model.StatusSuccess,
			CollectedAt: time.Now().UTC(),
		},
		ArtistID:   artist.ID,
		ArtistName: artist.Name,
		ArtistStats: &model.SpotifyArtistStats{
			Followers:  artist.Followers.Total,
			Popularity: artist.Popularity,
			Genres:     artist.Genres,
		},
	}

	avg, err := s.topTracksAvgPopularity(ctx, token, artist.ID)
	if err != nil {
		logger.Get().Debug(ctx, "spotify top tracks unavailable",
			logger.String("artist", artistName), logger.Error(err))
		result.Status = model.StatusPartial
		return result
	}
	result.TopTracksAvgPopularity = avg
	return result
}

func (s *Spotify) searchArtist(ctx context.Context, token, artistName string) (*spotifyArtist, error) {
	params := url.Values{}
	params.Set("q", artistName)
	params.Set("type", "artist")
	params.Set("limit", "1")

	var resp spotifySearchResponse
	err := getJSON(ctx, s.client, query(s.apiURL, "/v1/search", params),
		map[string]string{"Authorization": "Bearer " + token}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Artists.Items) == 0 {
		return nil, nil
	}
	return &resp.Artists.Items[0], nil
}

func (s *Spotify) topTracksAvgPopularity(ctx context.Context, token, artistID string) (float64, error) {
	params := url.Values{}
	params.Set("market", "US")

	var resp spotifyTopTracksResponse
	err := getJSON(ctx, s.client, query(s.apiURL, "/v1/artists/"+artistID+"/top-tracks", params),
		map[string]string{"Authorization": "Bearer " + token}, &resp)
	if err != nil {
		return 0, err
	}
	if len(resp.Tracks) == 0 {
		return 0, nil
	}
	var sum int
	for _, t := range resp.Tracks {
		sum += t.Popularity
	}
	return float64(sum) / float64(len(resp.Tracks)), nil
}

// token returns a cached client-credentials token, requesting a new one when
// the cached token is missing or close to expiry.
func (s *Spotify) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	creds := base64.StdEncoding.EncodeToString([]byte(s.clientID + ":" + s.clientSecret))
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	s.accessToken = tok.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - spotifyTokenSlack)
	return s.accessToken, nil
}
