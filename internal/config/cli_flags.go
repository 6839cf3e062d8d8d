package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json-log", false, "Emit logs in JSON format")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "30s", "Hard timeout for requests")
	cmd.PersistentFlags().String("site", "", "Target site domain (default craigslist.org)")
	cmd.PersistentFlags().Int("concurrency", DefaultConcurrency, "Concurrent requests per batch")
	cmd.PersistentFlags().String("cache-ttl", "", "Response cache lifetime (e.g., 30m)")
}
