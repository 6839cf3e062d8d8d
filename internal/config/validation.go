package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be >= 1")
	}
	if c.Concurrency <= 0 || c.Concurrency > DefaultMaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", DefaultMaxConcurrency)
	}
	if c.ResultsPerPage <= 0 {
		return fmt.Errorf("results per page must be > 0")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be > 0")
	}
	return nil
}
