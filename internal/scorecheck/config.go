// Package scorecheck implements the concurrent smoke-check tool that scores
// a batch of artists against a running service and reports the results.
package scorecheck

import (
	"errors"
	"time"
)

// Config carries the run parameters for a score check.
type Config struct {
	BaseURL string
	Artists []string
	Workers int
	Timeout time.Duration
	Quick   bool
	Verbose bool
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL must not be empty")
	}
	if len(c.Artists) == 0 {
		return errors.New("at least one artist is required")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	return nil
}
