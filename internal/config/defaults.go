package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultCacheTTL        = 1 * time.Hour
	DefaultMaxRetries      = 5
	DefaultRetryBaseDelay  = 500 * time.Millisecond
	DefaultRetryMaxDelay   = 30 * time.Second
	DefaultRateLimitRPS    = 2.0
	DefaultRateLimitBurst  = 4
	DefaultConcurrency     = 3
	DefaultMaxConcurrency  = 16
	DefaultStaggerDelay    = 500 * time.Millisecond
	DefaultInterBatchDelay = 2 * time.Second
	DefaultResultsPerPage  = 120
	DefaultSite            = "craigslist.org"
	DefaultBrowserHeadless = true
	DefaultBrowserWait     = 10 * time.Second
	DefaultBrowserScrolls  = 10
	DefaultScrollDelay     = 1500 * time.Millisecond
)
