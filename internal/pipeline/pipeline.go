// Package pipeline orchestrates a full search: fan out over regions,
// extract and reconcile each results page, optionally walk pagination and
// enrich hits with their detail pages, then dedupe the merged set.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/internal/batch"
	"github.com/adscout/scrape/internal/correlate"
	"github.com/adscout/scrape/internal/dedupe"
	"github.com/adscout/scrape/internal/extract"
	"github.com/adscout/scrape/internal/fetch"
	"github.com/adscout/scrape/internal/paginate"
	"github.com/adscout/scrape/internal/urlutil"
	"github.com/adscout/scrape/pkg/models"
)

// DefaultResultsPerPage matches the site's page size for search results.
const DefaultResultsPerPage = 120

const defaultCategory = "sss"

// Region codes are the leading host label, e.g. "sfbay" or "newyork".
var regionPattern = regexp.MustCompile(`^[a-z][a-z0-9]{1,31}$`)

// Pipeline wires the fetcher and extractor into the search operations the
// CLI exposes.
type Pipeline struct {
	fetcher   *fetch.Fetcher
	extractor *extract.Extractor
	batchOpts batch.Options
	perPage   int

	// OnRegionDone, when set, is called after each region's results page
	// has been processed. The CLI uses it to advance a progress bar.
	OnRegionDone func(region string, found int)
}

// New builds a Pipeline. perPage <= 0 selects DefaultResultsPerPage.
func New(fetcher *fetch.Fetcher, extractor *extract.Extractor, batchOpts batch.Options, perPage int) *Pipeline {
	if perPage <= 0 {
		perPage = DefaultResultsPerPage
	}
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		batchOpts: batchOpts,
		perPage:   perPage,
	}
}

// Search runs the query against every requested region, merges the regional
// result sets, and returns the deduplicated listings. Invalid region codes
// fail before any request is issued.
func (p *Pipeline) Search(ctx context.Context, params models.SearchParams) ([]models.Listing, error) {
	regions := params.Regions
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions requested")
	}
	for _, r := range regions {
		if !regionPattern.MatchString(r) {
			return nil, fmt.Errorf("invalid region code %q", r)
		}
	}

	log.Info().Strs("regions", regions).Str("query", params.Query).Msg("Starting search")

	pages := batch.Run(ctx, regions, p.batchOpts, func(ctx context.Context, region string) (*[]models.Listing, error) {
		listings, err := p.searchRegion(ctx, region, params)
		if p.OnRegionDone != nil {
			p.OnRegionDone(region, len(listings))
		}
		if err != nil {
			return nil, err
		}
		return &listings, nil
	})

	var all []models.Listing
	for _, pg := range pages {
		if pg != nil {
			all = append(all, *pg...)
		}
	}

	all = dedupe.Listings(all)
	all = capLimit(all, params.Limit)

	if params.FetchDetails {
		p.enrichDetails(ctx, all, params.UseBrowser)
	}

	log.Info().Int("count", len(all)).Msg("Search complete")
	return all, nil
}

// searchRegion fetches and reconciles one region's first results page.
func (p *Pipeline) searchRegion(ctx context.Context, region string, params models.SearchParams) ([]models.Listing, error) {
	searchURL := p.SearchURL(region, params)

	resp, err := p.fetcher.Fetch(ctx, searchURL, models.RequestOptions{UseBrowser: params.UseBrowser})
	if err != nil {
		return nil, fmt.Errorf("fetching region %s: %w", region, err)
	}
	if !resp.OK() {
		log.Warn().Str("region", region).Int("status", resp.Status).Msg("Results page not usable")
		return nil, nil
	}

	return p.reconcilePage(resp.Body, region), nil
}

// reconcilePage extracts a results page both ways and merges the two views.
// Pages without structured data fall back to the DOM listings alone.
func (p *Pipeline) reconcilePage(html, region string) []models.Listing {
	dom := p.extractor.Listings(html, region)
	entries := extract.StructuredEntries(html)
	if len(entries) == 0 {
		return dom
	}
	return correlate.Merge(entries, dom, func(title string) string {
		return p.fallbackSearchURL(region, title)
	})
}

// SearchPaginated walks every results page of one region instead of just
// the first. The first page's markup drives the page-count estimate.
func (p *Pipeline) SearchPaginated(ctx context.Context, region string, params models.SearchParams) ([]models.Listing, error) {
	if !regionPattern.MatchString(region) {
		return nil, fmt.Errorf("invalid region code %q", region)
	}

	searchURL := p.SearchURL(region, params)
	first, err := p.fetcher.Fetch(ctx, searchURL, models.RequestOptions{UseBrowser: params.UseBrowser})
	if err != nil {
		return nil, fmt.Errorf("fetching first page: %w", err)
	}
	if !first.OK() {
		return nil, fmt.Errorf("first results page returned status %d", first.Status)
	}

	pages := paginate.EstimateTotalPages(first.Body, p.perPage)
	urls, err := paginate.BuildPageURLs(searchURL, pages, p.perPage)
	if err != nil {
		return nil, err
	}
	log.Info().Str("region", region).Int("pages", pages).Msg("Walking result pages")

	all := p.reconcilePage(first.Body, region)

	if len(urls) > 1 {
		rest := batch.Run(ctx, urls[1:], p.batchOpts, func(ctx context.Context, pageURL string) (*[]models.Listing, error) {
			resp, err := p.fetcher.Fetch(ctx, pageURL, models.RequestOptions{UseBrowser: params.UseBrowser})
			if err != nil {
				return nil, err
			}
			if !resp.OK() {
				log.Warn().Str("url", pageURL).Int("status", resp.Status).Msg("Skipping unusable page")
				return nil, nil
			}
			ls := p.reconcilePage(resp.Body, region)
			return &ls, nil
		})
		for _, pg := range rest {
			if pg != nil {
				all = append(all, *pg...)
			}
		}
	}

	all = dedupe.Listings(all)
	all = capLimit(all, params.Limit)

	if params.FetchDetails {
		p.enrichDetails(ctx, all, params.UseBrowser)
	}
	return all, nil
}

// GetDetail fetches one listing page and extracts the full record.
func (p *Pipeline) GetDetail(ctx context.Context, listingURL string, useBrowser bool) (*models.Listing, error) {
	if err := urlutil.Validate(listingURL); err != nil {
		return nil, err
	}

	resp, err := p.fetcher.Fetch(ctx, listingURL, models.RequestOptions{UseBrowser: useBrowser})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("listing page returned status %d", resp.Status)
	}
	return p.extractor.Detail(resp.Body, listingURL)
}

// enrichDetails fetches each listing's detail page and folds the richer
// record into the slice in place. Listings whose detail page is missing or
// unusable keep their search-page fields.
func (p *Pipeline) enrichDetails(ctx context.Context, listings []models.Listing, useBrowser bool) {
	idx := make([]int, 0, len(listings))
	for i := range listings {
		if urlutil.Validate(listings[i].URL) == nil {
			idx = append(idx, i)
		}
	}

	details := batch.Run(ctx, idx, p.batchOpts, func(ctx context.Context, i int) (*models.Listing, error) {
		return p.GetDetail(ctx, listings[i].URL, useBrowser)
	})

	for n, d := range details {
		if d == nil {
			continue
		}
		i := idx[n]
		d.URL = listings[i].URL
		d.ID = listings[i].ID
		d.Region = listings[i].Region
		d.Subregion = listings[i].Subregion
		if d.Title == "" {
			d.Title = listings[i].Title
		}
		listings[i] = *d
	}
}

func capLimit(listings []models.Listing, limit int) []models.Listing {
	if limit > 0 && len(listings) > limit {
		return listings[:limit]
	}
	return listings
}

// SearchURL builds the region's search URL from the query parameters.
func (p *Pipeline) SearchURL(region string, params models.SearchParams) string {
	category := params.Category
	if category == "" {
		category = defaultCategory
	}

	q := url.Values{}
	if params.Query != "" {
		q.Set("query", params.Query)
	}
	if params.MinPrice != nil {
		q.Set("min_price", strconv.Itoa(*params.MinPrice))
	}
	if params.MaxPrice != nil {
		q.Set("max_price", strconv.Itoa(*params.MaxPrice))
	}

	u := fmt.Sprintf("https://%s.%s/search/%s", region, p.extractor.Site(), category)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// fallbackSearchURL synthesizes a search link for a structured entry that
// matched no DOM listing, so the record still points somewhere useful.
func (p *Pipeline) fallbackSearchURL(region, title string) string {
	q := url.Values{}
	q.Set("query", strings.TrimSpace(title))
	return fmt.Sprintf("https://%s.%s/search/%s?%s", region, p.extractor.Site(), defaultCategory, q.Encode())
}
