// internal/cli/detail.go
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adscout/scrape/internal/extract"
	"github.com/adscout/scrape/internal/ui"
	"github.com/adscout/scrape/internal/utils/output"
	"github.com/adscout/scrape/pkg/models"
)

var (
	detailBrowser bool
	detailOutput  string
)

// detailCmd represents the detail command
var detailCmd = &cobra.Command{
	Use:   "detail <url>",
	Short: "Fetch one listing page and print the full record",
	Example: `  # Fetch a single listing
  adscout detail https://sfbay.craigslist.org/sby/d/bike/7700000001.html

  # Use headless browser mode and save to a file
  adscout detail https://sfbay.craigslist.org/sby/d/bike/7700000001.html --browser -o listing.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetail,
}

func init() {
	rootCmd.AddCommand(detailCmd)

	detailCmd.Flags().BoolVar(&detailBrowser, "browser", false, "Use headless browser mode for fetching")
	detailCmd.Flags().StringVarP(&detailOutput, "output", "o", "", "File path to save output (.json, .csv, or .md)")
}

func runDetail(cmd *cobra.Command, args []string) error {
	application := GetApp()
	if application == nil {
		return fmt.Errorf("application not initialized")
	}

	listing, err := application.Pipeline.GetDetail(cmd.Context(), args[0], detailBrowser)
	if err != nil {
		if errors.Is(err, extract.ErrUnusablePage) {
			fmt.Fprintln(os.Stderr, ui.Error("Listing page is gone or blocked."))
		}
		return err
	}

	if detailOutput != "" {
		if err := saveListings([]models.Listing{*listing}, detailOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s listing saved to %s\n", ui.Success("✔"), detailOutput)
		return nil
	}
	return output.WriteJSON(os.Stdout, []models.Listing{*listing})
}
