// Package config defines service configuration structures and loading hooks.
//
// The configuration is read once at startup and injected by reference into
// the request-handling layer; nothing mutates it afterwards.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Collector credentials.
	SpotifyClientID     string `koanf:"spotify_client_id"`
	SpotifyClientSecret string `koanf:"spotify_client_secret"`
	YouTubeAPIKey       string `koanf:"youtube_api_key"`
	ChartmetricToken    string `koanf:"chartmetric_token"`
	BraveAPIKey         string `koanf:"brave_api_key"`

	// CollectorTimeoutSeconds bounds each external collection call. A
	// timed-out call degrades to a failed bundle, it never fails the request.
	CollectorTimeoutSeconds int `koanf:"collector_timeout_seconds"`

	// LLM collaborator settings (OpenAI-compatible endpoint).
	LLMBaseURL           string `koanf:"llm_base_url"`
	LLMAPIKey            string `koanf:"llm_api_key"`
	LLMModel             string `koanf:"llm_model"`
	LLMRequestsPerMinute int    `koanf:"llm_requests_per_minute"`
	LLMBurst             int    `koanf:"llm_burst"`

	// Weights maps source keys (spotify, youtube, chartmetric, sentiment,
	// web_presence) to their share of the composite score. Must sum to 1.0.
	Weights map[string]float64 `koanf:"weights"`

	// MaxSentimentArticles caps the article list handed to the sentiment
	// collaborator, for prompt-size control.
	MaxSentimentArticles int `koanf:"max_sentiment_articles"`

	// CacheEnabled and CacheTTLSeconds control the in-memory score cache.
	CacheEnabled    bool `koanf:"cache_enabled"`
	CacheTTLSeconds int  `koanf:"cache_ttl_seconds"`
}

// New creates a Config with defaults. Load layers file and env on top.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":8080",
		CollectorTimeoutSeconds: 30,
		LLMModel:                "gpt-4o-mini",
		LLMRequestsPerMinute:    60,
		LLMBurst:                5,
		Weights: map[string]float64{
			"spotify":      0.35,
			"youtube":      0.30,
			"chartmetric":  0.25,
			"sentiment":    0.07,
			"web_presence": 0.03,
		},
		MaxSentimentArticles: 10,
		CacheEnabled:         true,
		CacheTTLSeconds:      3600,
	}
}
