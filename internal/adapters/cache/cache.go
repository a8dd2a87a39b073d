// Package cache provides an in-memory TTL cache for computed score
// responses. Scoring pulls from several rate-limited external APIs, so
// repeated lookups for the same artist within the TTL are served from here.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mverse/brandpulse/internal/domain/types"
)

// Default cache configuration.
const (
	defaultTTL     = time.Hour
	defaultMaxSize = 1024
)

// entry pairs a stored response with its expiry.
type entry struct {
	response  types.ArtistScoreResponse
	expiresAt time.Time
}

// Store is a thread-safe TTL cache keyed by artist name and detail flag.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithTTL sets how long entries stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSize bounds the number of cached responses.
func WithMaxSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store with default configuration.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		maxSize: defaultMaxSize,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Key builds the cache key for an artist and detail flag. Lookups are
// case-insensitive on the artist name.
func Key(artistName string, includeDetail bool) string {
	k := strings.ToLower(strings.TrimSpace(artistName))
	if includeDetail {
		return k + "|detailed"
	}
	return k + "|quick"
}

// Get returns the cached response for key if present and unexpired.
func (s *Store) Get(_ context.Context, key string) (types.ArtistScoreResponse, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().After(e.expiresAt) {
		return types.ArtistScoreResponse{}, false
	}
	return e.response, true
}

// Set stores a response under key. When the store is full, expired entries
// are swept first; if still full the write is dropped rather than evicting
// fresh data.
func (s *Store) Set(_ context.Context, key string, resp types.ArtistScoreResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxSize {
		s.sweepLocked()
		if len(s.entries) >= s.maxSize {
			if _, exists := s.entries[key]; !exists {
				return
			}
		}
	}

	s.entries[key] = entry{
		response:  resp,
		expiresAt: s.now().Add(s.ttl),
	}
}

// Len returns the number of entries currently held, including expired ones
// that have not been swept yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// sweepLocked removes expired entries. Callers must hold the write lock.
func (s *Store) sweepLocked() {
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
