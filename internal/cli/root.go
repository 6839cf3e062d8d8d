// internal/cli/root.go
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/adscout/scrape/internal/app"
	"github.com/adscout/scrape/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "adscout",
	Short:   "A resilient scraper for classified-ad listings",
	Long:    `Adscout searches classified-ad sites across regions, survives blocking and flaky markup, and exports clean listing records.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load configuration, using defaults")
			cfg, err = config.Load(nil)
			if err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout*10)
		defer cancel()
		application, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, application)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		application := GetApp()
		if application == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.HTTPTimeout*10)
		defer cancel()
		_ = application.Close(ctx)
		SetApp(cmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for adscout")
	rootCmd.Flags().Bool("version", false, "Version for adscout")
}
