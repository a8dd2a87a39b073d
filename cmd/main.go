package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/mverse/brandpulse/internal/adapters/cache"
	"github.com/mverse/brandpulse/internal/adapters/collectors"
	"github.com/mverse/brandpulse/internal/adapters/http/api"
	"github.com/mverse/brandpulse/internal/adapters/http/swagger"
	"github.com/mverse/brandpulse/internal/adapters/llm"
	app "github.com/mverse/brandpulse/internal/app"
	"github.com/mverse/brandpulse/internal/config"
	"github.com/mverse/brandpulse/internal/domain/scoring"
	"github.com/mverse/brandpulse/pkg/logger"
	"github.com/mverse/brandpulse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6

	secondsPerMinute = 60.0
)

func main() {
	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		os.Stderr.WriteString("failed to initialize chat model: " + err.Error() + "\n")
		return
	}

	limiter := rate.NewLimiter(rate.Limit(float64(cfg.LLMRequestsPerMinute)/secondsPerMinute), cfg.LLMBurst)
	analyzer := llm.NewAnalyzer(chatModel,
		llm.WithRateLimiter(limiter),
		llm.WithMaxArticles(cfg.MaxSentimentArticles),
	)

	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithCollectors(
			collectors.NewSpotify(cfg.SpotifyClientID, cfg.SpotifyClientSecret),
			collectors.NewYouTube(cfg.YouTubeAPIKey),
			collectors.NewChartmetric(cfg.ChartmetricToken),
			collectors.NewBrave(cfg.BraveAPIKey),
		),
		app.WithAnalyzer(analyzer),
		app.WithCalculator(scoring.NewCalculator(scoring.WithWeights(cfg.Weights))),
		app.WithCollectorTimeout(time.Duration(cfg.CollectorTimeoutSeconds) * time.Second),
	}
	if cfg.CacheEnabled {
		opts = append(opts, app.WithCache(cache.New(
			cache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
		)))
	}
	svc := app.New(opts...)

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.RequestIDMiddleware(mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates
// process-level metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
