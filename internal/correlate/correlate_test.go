package correlate

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/adscout/scrape/internal/extract"
	"github.com/adscout/scrape/pkg/models"
)

func f64(v float64) *float64 { return &v }

func searchFallback(title string) string {
	return "https://sfbay.craigslist.org/search/sss?query=" + url.QueryEscape(title)
}

func TestMergePairsByTitleAndPrice(t *testing.T) {
	posted := time.Date(2024, 3, 10, 14, 22, 0, 0, time.UTC)
	entries := []extract.StructuredEntry{
		{Title: "Vintage Oak Desk", Price: f64(200), Description: "solid oak, minor scratches", PostedAt: &posted},
	}
	dom := []models.Listing{
		{Title: "Mountain Bike 29er", URL: "https://sfbay.craigslist.org/sby/d/bike/7700000001.html", PriceNumeric: f64(450)},
		{
			Title:        "Vintage Oak Desk",
			URL:          "https://sfbay.craigslist.org/sby/d/desk/7700000002.html",
			ID:           "7700000002",
			Price:        "$200",
			PriceNumeric: f64(200),
			Location:     "san jose",
			Region:       "sfbay",
			Subregion:    "sby",
			Attributes:   map[string]any{"condition": "good"},
		},
	}

	merged := Merge(entries, dom, searchFallback)
	if len(merged) != 1 {
		t.Fatalf("merged count = %d, want 1", len(merged))
	}

	got := merged[0]
	if got.URL != dom[1].URL {
		t.Errorf("URL = %q, want %q", got.URL, dom[1].URL)
	}
	if got.ID != "7700000002" {
		t.Errorf("ID = %q, want 7700000002", got.ID)
	}
	if got.Description != "solid oak, minor scratches" {
		t.Errorf("Description = %q, structured description should win", got.Description)
	}
	if got.PostedAt == nil || !got.PostedAt.Equal(posted) {
		t.Errorf("PostedAt = %v, want %v", got.PostedAt, posted)
	}
	if got.Attributes["condition"] != "good" {
		t.Errorf("Attributes not carried from paired listing: %v", got.Attributes)
	}
	if got.Location != "san jose" {
		t.Errorf("Location = %q, want san jose", got.Location)
	}
}

func TestMergeZeroScoreFallsBackToSearchURL(t *testing.T) {
	entries := []extract.StructuredEntry{
		{Title: "Vintage Desk", Price: f64(75)},
	}
	dom := []models.Listing{
		{Title: "Kayak w/ Paddle", URL: "https://sfbay.craigslist.org/sby/d/kayak/7700000003.html"},
	}

	merged := Merge(entries, dom, searchFallback)
	if len(merged) != 1 {
		t.Fatalf("merged count = %d, want 1", len(merged))
	}
	if !strings.Contains(merged[0].URL, "query=Vintage+Desk") && !strings.Contains(merged[0].URL, "query=Vintage%20Desk") {
		t.Errorf("fallback URL %q does not carry the encoded title", merged[0].URL)
	}
	if merged[0].PriceNumeric == nil || *merged[0].PriceNumeric != 75 {
		t.Errorf("structured price lost in fallback merge")
	}
}

func TestMergeTieKeepsFirstInDocumentOrder(t *testing.T) {
	entries := []extract.StructuredEntry{{Title: "iphone 13 pro"}}
	dom := []models.Listing{
		{Title: "iphone 13 pro", URL: "https://sfbay.craigslist.org/sby/d/a/7700000004.html"},
		{Title: "iphone 13 pro", URL: "https://sfbay.craigslist.org/sby/d/b/7700000005.html"},
	}

	merged := Merge(entries, dom, searchFallback)
	if merged[0].URL != dom[0].URL {
		t.Errorf("tie broke to %q, want first-in-order %q", merged[0].URL, dom[0].URL)
	}
}

func TestScoreWeights(t *testing.T) {
	entry := extract.StructuredEntry{
		Title:    "Road Bike 21in",
		Price:    f64(150),
		Location: "mission district",
		Image:    "https://images.example.org/00A0A_abc123xyz_600x450.jpg",
	}
	listing := &models.Listing{
		Title:        "Road Bike 21in",
		PriceNumeric: f64(150),
		Location:     "mission district",
		ImageURL:     "https://images.example.org/00A0A_abc123xyz_50x50c.jpg",
	}

	got := Score(entry, listing)
	want := titleWeight + priceWeight + locationWeight + imageWeight
	if got != want {
		t.Errorf("full-signal score = %v, want %v", got, want)
	}

	listing.PriceNumeric = f64(151)
	if s := Score(entry, listing); s != want-priceWeight {
		t.Errorf("near-miss price still scored: %v", s)
	}
}

func TestScoreImageIDMatchesAcrossVariants(t *testing.T) {
	entry := extract.StructuredEntry{
		Title: "table",
		Image: "https://images.example.org/00B0B_qqq111www_1200x900.jpg",
	}
	listing := &models.Listing{
		Title:    "sofa",
		ImageURL: "https://images.example.org/00B0B_qqq111www_50x50c.jpg",
	}
	if s := Score(entry, listing); s < imageWeight {
		t.Errorf("image id variant match score = %v, want at least %v", s, imageWeight)
	}
}

func TestMergeKeepsEntryOrder(t *testing.T) {
	var entries []extract.StructuredEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, extract.StructuredEntry{Title: fmt.Sprintf("item %d unique title", i)})
	}
	merged := Merge(entries, nil, searchFallback)
	if len(merged) != 5 {
		t.Fatalf("merged count = %d, want 5", len(merged))
	}
	for i, l := range merged {
		if !strings.Contains(l.URL, url.QueryEscape(fmt.Sprintf("item %d unique title", i))) {
			t.Errorf("merged[%d] out of order: %q", i, l.URL)
		}
	}
}
