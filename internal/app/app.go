// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/internal/batch"
	"github.com/adscout/scrape/internal/cache"
	"github.com/adscout/scrape/internal/config"
	"github.com/adscout/scrape/internal/extract"
	"github.com/adscout/scrape/internal/fetch"
	"github.com/adscout/scrape/internal/pipeline"
	"github.com/adscout/scrape/internal/proxy"
	"github.com/adscout/scrape/internal/ratelimit"
	"github.com/adscout/scrape/internal/retry"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       *cache.Store
	RateLimiter *ratelimit.HostLimiter
	ProxyPool   *proxy.Pool
	HTTPClient  *http.Client
	Fetcher     *fetch.Fetcher
	Extractor   *extract.Extractor
	Pipeline    *pipeline.Pipeline
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It configures logging, builds the response cache, rate limiter, proxy
// pool, and HTTP client, then wires the fetcher, extractor, and pipeline
// on top of them. If any step fails, an error is returned and no
// resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	store := cache.New(cfg.CacheTTL)
	logger.Debug().
		Dur("ttl", cfg.CacheTTL).
		Msg("Response cache initialized")

	rateLimiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	proxyPool := proxy.NewPool(cfg.Proxies)

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	retryCfg := retry.Config{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
		Multiplier:  2.0,
		JitterMax:   time.Second,
	}

	browserOpts := fetch.BrowserOptions{
		Headless:       cfg.BrowserHeadless,
		WaitTimeout:    cfg.BrowserWait,
		MaxScrolls:     cfg.BrowserScrolls,
		ScrollDelay:    cfg.ScrollDelay,
		ChromePath:     cfg.ChromePath,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}

	fetcher := fetch.New(httpClient, store, rateLimiter, proxyPool, retryCfg, browserOpts)
	extractor := extract.New(cfg.Site)

	batchOpts := batch.Options{
		Concurrency:     cfg.Concurrency,
		StaggerDelay:    cfg.StaggerDelay,
		InterBatchDelay: cfg.InterBatchDelay,
	}
	pipe := pipeline.New(fetcher, extractor, batchOpts, cfg.ResultsPerPage)

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       store,
		RateLimiter: rateLimiter,
		ProxyPool:   proxyPool,
		HTTPClient:  httpClient,
		Fetcher:     fetcher,
		Extractor:   extractor,
		Pipeline:    pipe,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// Close gracefully shuts down the application and all its resources.
// Any errors during shutdown are logged but do not prevent other
// shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.Cache != nil {
		a.Cache.Clear()
	}
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
