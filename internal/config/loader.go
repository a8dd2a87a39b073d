package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BRANDPULSE_CONFIG is set
//  3. env (prefix BRANDPULSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BRANDPULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: BRANDPULSE_ADDR, BRANDPULSE_BRAVE_API_KEY, ...
	// Keys are lowercased with underscores preserved to match koanf tags.
	envProvider := env.Provider("BRANDPULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "brandpulse_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.CollectorTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: collector_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if c.MaxSentimentArticles <= 0 {
		return fmt.Errorf("%w: max_sentiment_articles must be positive", ErrInvalidConfig)
	}
	if len(c.Weights) > 0 {
		var sum float64
		for source, w := range c.Weights {
			if w < 0 {
				return fmt.Errorf("%w: weight for %s must not be negative", ErrInvalidConfig, source)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 0.001 {
			return fmt.Errorf("%w: weights must sum to 1.0, got %.3f", ErrInvalidConfig, sum)
		}
	}
	return nil
}
