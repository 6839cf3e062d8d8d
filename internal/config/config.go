package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP/Scraping
	HTTPTimeout time.Duration
	Proxies     []string
	Site        string

	// Retry
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Batch Scheduling
	Concurrency     int
	StaggerDelay    time.Duration
	InterBatchDelay time.Duration

	// Pagination
	ResultsPerPage int

	// Browser Mode
	BrowserHeadless bool
	BrowserWait     time.Duration
	BrowserScrolls  int
	ScrollDelay     time.Duration
	ChromePath      string

	// Caching
	CacheTTL time.Duration
}

// Load builds a Config by combining defaults, an optional .env file,
// environment variables, and CLI flags. Caller should pass the root
// *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		HTTPTimeout:     DefaultHTTPTimeout,
		Site:            DefaultSite,
		MaxRetries:      DefaultMaxRetries,
		RetryBaseDelay:  DefaultRetryBaseDelay,
		RetryMaxDelay:   DefaultRetryMaxDelay,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		Concurrency:     DefaultConcurrency,
		StaggerDelay:    DefaultStaggerDelay,
		InterBatchDelay: DefaultInterBatchDelay,
		ResultsPerPage:  DefaultResultsPerPage,
		BrowserHeadless: DefaultBrowserHeadless,
		BrowserWait:     DefaultBrowserWait,
		BrowserScrolls:  DefaultBrowserScrolls,
		ScrollDelay:     DefaultScrollDelay,
		CacheTTL:        DefaultCacheTTL,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("ADSCOUT_SITE"); v != "" {
		cfg.Site = v
	}
	if v := os.Getenv("ADSCOUT_PROXY"); v != "" {
		cfg.Proxies = append(cfg.Proxies, v)
	}
	if v := os.Getenv("ADSCOUT_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("ADSCOUT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("ADSCOUT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("ADSCOUT_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("ADSCOUT_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxies = append(cfg.Proxies, s)
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("site"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Site = s
			}
		}
		if f := cmd.Flags().Lookup("concurrency"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.Concurrency = n
			}
		}
		if f := cmd.Flags().Lookup("cache-ttl"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.CacheTTL = d
				}
			}
		}
		if f := cmd.Flags().Lookup("json-log"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
