// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mverse/brandpulse/internal/adapters/cache"
	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/internal/domain/scoring"
	"github.com/mverse/brandpulse/internal/domain/sentiment"
	"github.com/mverse/brandpulse/internal/domain/types"
	"github.com/mverse/brandpulse/pkg/logger"
	"github.com/mverse/brandpulse/pkg/metrics"
)

// Per-source collectors. Each Collect call is expected to return a
// failure-status bundle instead of an error when the source is unavailable.
type (
	// SpotifyCollector gathers streaming-platform metrics.
	SpotifyCollector interface {
		Collect(ctx context.Context, artistName string) model.SpotifyMetrics
	}

	// YouTubeCollector gathers video-platform metrics.
	YouTubeCollector interface {
		Collect(ctx context.Context, artistName string) model.YouTubeMetrics
	}

	// ChartmetricCollector gathers industry analytics metrics.
	ChartmetricCollector interface {
		Collect(ctx context.Context, artistName string) model.ChartmetricMetrics
	}

	// BraveCollector gathers web-presence metrics.
	BraveCollector interface {
		Collect(ctx context.Context, artistName string) model.BraveSearchMetrics
	}
)

// Analyzer runs the LLM-backed sentiment analysis and narrative summary.
type Analyzer interface {
	Analyze(ctx context.Context, artistName string, articles []model.NewsArticle) sentiment.Aggregated
	Summarize(ctx context.Context, artistName string, breakdown types.ScoreBreakdown, finalScore float64, grade string) string
}

// Service orchestrates the collectors, the sentiment analysis and the
// scoring engine into a single scoring operation.
type Service struct {
	spotify     SpotifyCollector
	youtube     YouTubeCollector
	chartmetric ChartmetricCollector
	brave       BraveCollector
	analyzer    Analyzer

	calculator *scoring.Calculator
	cache      *cache.Store

	collectorTimeout time.Duration

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCollectors sets the four per-source collectors.
func WithCollectors(sp SpotifyCollector, yt YouTubeCollector, cm ChartmetricCollector, br BraveCollector) Option {
	return func(s *Service) {
		s.spotify = sp
		s.youtube = yt
		s.chartmetric = cm
		s.brave = br
	}
}

// WithAnalyzer sets the sentiment and summary analyzer.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithCalculator overrides the scoring calculator.
func WithCalculator(c *scoring.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calculator = c
		}
	}
}

// WithCache enables response caching.
func WithCache(store *cache.Store) Option {
	return func(s *Service) { s.cache = store }
}

// WithCollectorTimeout bounds each individual collector call.
func WithCollectorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.collectorTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		calculator:       scoring.NewCalculator(),
		collectorTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// ComputeScore runs the full scoring pipeline for one artist: fan out to all
// four collectors concurrently, analyze sentiment over the collected news,
// and aggregate everything into the composite score. Collector failures
// never fail the request; they surface as warnings and reduced confidence.
func (s *Service) ComputeScore(ctx context.Context, artistName string, includeDetail bool) (types.ArtistScoreResponse, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return types.ArtistScoreResponse{}, ErrEmptyArtistName
	}

	cacheKey := cache.Key(artistName, includeDetail)
	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx, cacheKey); ok {
			metrics.RecordCacheHit()
			s.logger.Debug(ctx, "serving cached score", logger.String("artist", artistName))
			return resp, nil
		}
		metrics.RecordCacheMiss()
	}

	metrics.ScoreStarted()
	defer metrics.ScoreFinished()
	start := time.Now()

	s.logger.Info(ctx, "computing brand score",
		logger.String("artist", artistName),
		logger.Bool("detailed", includeDetail),
	)

	spotifyRes, youtubeRes, chartmetricRes, braveRes := s.collectAll(ctx, artistName)

	agg := s.analyzer.Analyze(ctx, artistName, braveRes.NewsArticles)

	resp := s.calculator.FinalScore(artistName, spotifyRes, youtubeRes, chartmetricRes, braveRes, agg, "")
	if includeDetail {
		resp.AISummary = s.analyzer.Summarize(ctx, artistName, resp.Breakdown, resp.FinalScore, resp.ScoreGrade)
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, resp)
	}

	elapsed := time.Since(start)
	metrics.RecordScoreComputed(resp.ScoreGrade, resp.FinalScore, resp.ConfidenceLevel)
	metrics.RecordScoringLatency(float64(elapsed.Milliseconds()))

	s.logger.Info(ctx, "brand score computed",
		logger.String("artist", artistName),
		logger.Float64("score", resp.FinalScore),
		logger.String("grade", resp.ScoreGrade),
		logger.Float64("confidence", resp.ConfidenceLevel),
		logger.Duration("elapsed", elapsed),
	)
	return resp, nil
}

// QuickScore computes the trimmed score-and-grade response.
func (s *Service) QuickScore(ctx context.Context, artistName string) (types.QuickScore, error) {
	resp, err := s.ComputeScore(ctx, artistName, false)
	if err != nil {
		return types.QuickScore{}, err
	}
	return types.QuickScore{
		ArtistName: resp.ArtistName,
		Score:      resp.FinalScore,
		Grade:      resp.ScoreGrade,
	}, nil
}

// collectAll fans out to the four collectors and waits for all of them. Each
// call gets its own timeout and panic guard so one misbehaving source cannot
// take down the request.
func (s *Service) collectAll(ctx context.Context, artistName string) (
	model.SpotifyMetrics, model.YouTubeMetrics, model.ChartmetricMetrics, model.BraveSearchMetrics,
) {
	var (
		wg             sync.WaitGroup
		spotifyRes     model.SpotifyMetrics
		youtubeRes     model.YouTubeMetrics
		chartmetricRes model.ChartmetricMetrics
		braveRes       model.BraveSearchMetrics
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		spotifyRes = model.FailedSpotify("spotify collection failed: internal error")
		s.guarded(ctx, "spotify", func(cctx context.Context) {
			spotifyRes = s.spotify.Collect(cctx, artistName)
		})
	}()
	go func() {
		defer wg.Done()
		youtubeRes = model.FailedYouTube("youtube collection failed: internal error")
		s.guarded(ctx, "youtube", func(cctx context.Context) {
			youtubeRes = s.youtube.Collect(cctx, artistName)
		})
	}()
	go func() {
		defer wg.Done()
		chartmetricRes = model.FailedChartmetric("chartmetric collection failed: internal error")
		s.guarded(ctx, "chartmetric", func(cctx context.Context) {
			chartmetricRes = s.chartmetric.Collect(cctx, artistName)
		})
	}()
	go func() {
		defer wg.Done()
		braveRes = model.FailedBrave("brave_search collection failed: internal error")
		s.guarded(ctx, "brave_search", func(cctx context.Context) {
			braveRes = s.brave.Collect(cctx, artistName)
		})
	}()
	wg.Wait()

	return spotifyRes, youtubeRes, chartmetricRes, braveRes
}

// guarded runs one collector call under its timeout, recovering panics so
// the pre-seeded failure bundle stays in place.
func (s *Service) guarded(ctx context.Context, source string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "collector panicked",
				logger.String("source", source),
				logger.Any("panic", r),
			)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, s.collectorTimeout)
	defer cancel()
	fn(cctx)
}
