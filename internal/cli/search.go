// internal/cli/search.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/adscout/scrape/internal/ui"
	"github.com/adscout/scrape/internal/utils/output"
	"github.com/adscout/scrape/pkg/models"
)

var (
	searchCategory string
	searchRegions  []string
	searchMinPrice int
	searchMaxPrice int
	searchLimit    int
	searchPaginate bool
	searchDetails  bool
	searchBrowser  bool
	searchOutput   string
	searchJSON     bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search listings across one or more regions",
	Long: `Runs the query against every requested region, reconciles each results
page, removes cross-posted duplicates, and prints or exports the merged set.

Pages that block the scraper are skipped rather than failing the run; use
--browser to fall back to a headless browser for stubborn regions.`,
	Example: `  # Search one region
  adscout search "road bike" --region sfbay

  # Multiple regions with a price window
  adscout search "standing desk" --region sfbay --region seattle --min-price 100 --max-price 400

  # Walk every results page and enrich hits with their detail pages
  adscout search "vintage camera" --region newyork --paginate --details

  # Export to a file (format from the extension: .json, .csv, .md)
  adscout search "kayak" --region portland -o kayaks.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Site category code (default sss, all for sale)")
	searchCmd.Flags().StringSliceVarP(&searchRegions, "region", "r", nil, "Region code to search (repeatable)")
	searchCmd.Flags().IntVar(&searchMinPrice, "min-price", 0, "Minimum price filter")
	searchCmd.Flags().IntVar(&searchMaxPrice, "max-price", 0, "Maximum price filter")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Cap on returned listings (0 = no cap)")
	searchCmd.Flags().BoolVar(&searchPaginate, "paginate", false, "Walk every results page, not just the first")
	searchCmd.Flags().BoolVar(&searchDetails, "details", false, "Fetch each listing's detail page")
	searchCmd.Flags().BoolVar(&searchBrowser, "browser", false, "Use headless browser mode for fetching")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "File path to save output (.json, .csv, or .md)")
	searchCmd.Flags().Bool("json", false, "Print results as JSON instead of a summary")
}

func runSearch(cmd *cobra.Command, args []string) error {
	application := GetApp()
	if application == nil {
		return fmt.Errorf("application not initialized")
	}

	if len(searchRegions) == 0 {
		return fmt.Errorf("at least one --region is required")
	}
	searchJSON, _ = cmd.Flags().GetBool("json")

	params := models.SearchParams{
		Query:        args[0],
		Category:     searchCategory,
		Regions:      searchRegions,
		Limit:        searchLimit,
		FetchDetails: searchDetails,
		UseBrowser:   searchBrowser,
	}
	if searchMinPrice > 0 {
		params.MinPrice = &searchMinPrice
	}
	if searchMaxPrice > 0 {
		params.MaxPrice = &searchMaxPrice
	}

	pipe := application.Pipeline

	// Progress over regions; suppressed when results go to stdout as JSON.
	if !searchJSON && !searchPaginate {
		bar := progressbar.NewOptions(len(searchRegions),
			progressbar.OptionSetDescription("Searching regions"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		pipe.OnRegionDone = func(region string, found int) {
			_ = bar.Add(1)
		}
		defer func() { pipe.OnRegionDone = nil }()
	}

	var (
		listings []models.Listing
		err      error
	)
	if searchPaginate {
		// Pagination walks one region at a time.
		for _, region := range searchRegions {
			rl, rerr := pipe.SearchPaginated(cmd.Context(), region, params)
			if rerr != nil {
				return rerr
			}
			listings = append(listings, rl...)
		}
	} else {
		listings, err = pipe.Search(cmd.Context(), params)
		if err != nil {
			return err
		}
	}

	if searchOutput != "" {
		if err := saveListings(listings, searchOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %d listings saved to %s\n", ui.Success("✔"), len(listings), searchOutput)
		return nil
	}

	if searchJSON {
		return output.WriteJSON(os.Stdout, listings)
	}

	printSummary(listings)
	return nil
}

func saveListings(listings []models.Listing, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return output.SaveJSON(listings, path)
	case ".csv":
		return output.SaveCSV(listings, path)
	case ".md", ".markdown":
		return output.SaveMarkdown(listings, path)
	default:
		log.Debug().Str("path", path).Msg("Unknown output extension, defaulting to JSON")
		return output.SaveJSON(listings, path)
	}
}

func printSummary(listings []models.Listing) {
	if len(listings) == 0 {
		fmt.Println(ui.Dim("No listings found."))
		return
	}

	fmt.Printf("\n%s\n\n", ui.Bold(fmt.Sprintf("Found %d listings", len(listings))))
	for i := range listings {
		l := &listings[i]
		price := l.Price
		if price == "" && l.PriceNumeric != nil {
			price = fmt.Sprintf("$%g", *l.PriceNumeric)
		}
		fmt.Printf("  %s %s\n", ui.Price(pad(price, 9)), l.Title)
		if l.Location != "" {
			fmt.Printf("  %s %s\n", pad("", 9), ui.Dim(l.Location))
		}
		fmt.Printf("  %s %s\n\n", pad("", 9), ui.Dim(l.URL))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
