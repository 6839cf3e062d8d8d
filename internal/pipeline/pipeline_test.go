package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adscout/scrape/internal/batch"
	"github.com/adscout/scrape/internal/cache"
	"github.com/adscout/scrape/internal/extract"
	"github.com/adscout/scrape/internal/fetch"
	"github.com/adscout/scrape/internal/proxy"
	"github.com/adscout/scrape/internal/ratelimit"
	"github.com/adscout/scrape/internal/retry"
	"github.com/adscout/scrape/pkg/models"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	f := fetch.New(
		&http.Client{Timeout: 5 * time.Second},
		cache.New(time.Minute),
		ratelimit.NewHostLimiter(1000, 1000),
		proxy.NewPool(nil),
		retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		fetch.DefaultBrowserOptions(),
	)
	return New(f, extract.New(extract.DefaultSite), batch.Options{Concurrency: 2}, 120)
}

func TestSearchRejectsInvalidRegion(t *testing.T) {
	p := testPipeline(t)
	for _, region := range []string{"SF Bay", "1sfbay", "", "sf_bay", strings.Repeat("a", 40)} {
		_, err := p.Search(context.Background(), models.SearchParams{Regions: []string{region}, Query: "bike"})
		if err == nil {
			t.Errorf("Search accepted region %q, want error", region)
		}
	}
}

func TestSearchRequiresRegions(t *testing.T) {
	p := testPipeline(t)
	if _, err := p.Search(context.Background(), models.SearchParams{Query: "bike"}); err == nil {
		t.Error("Search with no regions should error")
	}
}

func TestSearchPaginatedRejectsInvalidRegion(t *testing.T) {
	p := testPipeline(t)
	if _, err := p.SearchPaginated(context.Background(), "bad region", models.SearchParams{}); err == nil {
		t.Error("SearchPaginated accepted invalid region")
	}
}

func TestSearchURL(t *testing.T) {
	p := testPipeline(t)
	min, max := 50, 500

	tests := []struct {
		name   string
		region string
		params models.SearchParams
		want   string
	}{
		{
			"query only",
			"sfbay",
			models.SearchParams{Query: "road bike"},
			"https://sfbay.craigslist.org/search/sss?query=road+bike",
		},
		{
			"category and price bounds",
			"newyork",
			models.SearchParams{Query: "desk", Category: "fua", MinPrice: &min, MaxPrice: &max},
			"https://newyork.craigslist.org/search/fua?max_price=500&min_price=50&query=desk",
		},
		{
			"bare browse",
			"seattle",
			models.SearchParams{},
			"https://seattle.craigslist.org/search/sss",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.SearchURL(tt.region, tt.params); got != tt.want {
				t.Errorf("SearchURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetDetail(t *testing.T) {
	page := `<!DOCTYPE html><html><body>
		<h1 class="postingtitle"><span class="postingtitletext">
			<span id="titletextonly">Standing Desk</span>
			<span class="price">$320</span>
		</span></h1>
		<section id="postingbody">Electric standing desk, works great.</section>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p := testPipeline(t)
	got, err := p.GetDetail(context.Background(), srv.URL+"/d/desk/7700000001.html", false)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if got.Title != "Standing Desk" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.PriceNumeric == nil || *got.PriceNumeric != 320 {
		t.Errorf("PriceNumeric = %v, want 320", got.PriceNumeric)
	}
}

func TestGetDetailInvalidURL(t *testing.T) {
	p := testPipeline(t)
	if _, err := p.GetDetail(context.Background(), "not-a-url", false); err == nil {
		t.Error("GetDetail accepted an invalid URL")
	}
}

func TestGetDetailErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := testPipeline(t)
	if _, err := p.GetDetail(context.Background(), srv.URL+"/d/x/7700000002.html", false); err == nil {
		t.Error("GetDetail should surface a non-2xx detail page as an error")
	}
}

func TestReconcilePagePrefersStructuredFields(t *testing.T) {
	page := `<!DOCTYPE html><html><body>
		<script type="application/ld+json">
		{"@type":"ItemList","itemListElement":[
			{"item":{"name":"Vintage Oak Desk","offers":{"price":"200"},"description":"solid oak"}}
		]}
		</script>
		<ul>
			<li class="result-row">
				<a class="result-title hdrlnk" href="https://sfbay.craigslist.org/sby/d/desk/7700000003.html">Vintage Oak Desk</a>
				<span class="result-price">$200</span>
			</li>
		</ul>
	</body></html>`

	p := testPipeline(t)
	got := p.reconcilePage(page, "sfbay")
	if len(got) != 1 {
		t.Fatalf("reconciled %d listings, want 1", len(got))
	}
	if got[0].URL != "https://sfbay.craigslist.org/sby/d/desk/7700000003.html" {
		t.Errorf("URL = %q, want the paired listing URL", got[0].URL)
	}
	if got[0].Description != "solid oak" {
		t.Errorf("Description = %q, structured field should win", got[0].Description)
	}
}

func TestReconcilePageWithoutStructuredData(t *testing.T) {
	page := `<!DOCTYPE html><html><body><ul>
		<li class="result-row">
			<a class="result-title hdrlnk" href="https://sfbay.craigslist.org/sby/d/bike/7700000004.html">Road Bike</a>
		</li>
	</ul></body></html>`

	p := testPipeline(t)
	got := p.reconcilePage(page, "sfbay")
	if len(got) != 1 || got[0].Title != "Road Bike" {
		t.Errorf("DOM-only page not extracted: %+v", got)
	}
}

func TestReconcilePageSynthesizesFallbackURL(t *testing.T) {
	page := `<!DOCTYPE html><html><body>
		<script type="application/ld+json">
		{"item":{"name":"Vintage Desk","offers":{"price":"75"}}}
		</script>
	</body></html>`

	p := testPipeline(t)
	got := p.reconcilePage(page, "sfbay")
	if len(got) != 1 {
		t.Fatalf("reconciled %d listings, want 1", len(got))
	}
	if !strings.Contains(got[0].URL, "query=Vintage+Desk") {
		t.Errorf("fallback URL = %q, want synthesized search link", got[0].URL)
	}
	if !strings.HasPrefix(got[0].URL, "https://sfbay.craigslist.org/search/sss?") {
		t.Errorf("fallback URL = %q, want region search base", got[0].URL)
	}
}
