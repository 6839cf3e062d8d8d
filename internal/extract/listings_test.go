package extract

import (
	"strings"
	"testing"
)

const resultRowPage = `<!DOCTYPE html>
<html><body>
<ul>
  <li class="result-row">
    <a class="result-title" href="/sby/bik/d/road-bike/7123456789.html">Road Bike 21in</a>
    <span class="result-price">$150</span>
    <span class="result-hood">(mission district)</span>
    <time datetime="2024-03-10 14:22"></time>
    <img src="https://images.example.org/00A0A_abc123xyz_50x50c.jpg">
  </li>
  <li class="result-row">
    <a class="result-title" href="/sby/fuo/d/oak-desk/7123456790.html">Oak Desk</a>
    <span class="result-price">$80</span>
  </li>
</ul>
</body></html>`

func TestListings_ResultRows(t *testing.T) {
	e := New("example.org")
	listings := e.Listings(resultRowPage, "sfbay")

	if len(listings) != 2 {
		t.Fatalf("Expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Title != "Road Bike 21in" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.URL != "https://sfbay.example.org/sby/bik/d/road-bike/7123456789.html" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.ID != "7123456789" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Price != "$150" {
		t.Errorf("Price = %q", first.Price)
	}
	if first.PriceNumeric == nil || *first.PriceNumeric != 150 {
		t.Errorf("PriceNumeric = %v", first.PriceNumeric)
	}
	if first.Location != "mission district" {
		t.Errorf("Location = %q (parentheses must be stripped)", first.Location)
	}
	if first.PostedAt == nil {
		t.Error("Expected PostedAt parsed from datetime attribute")
	}
	if !strings.Contains(first.ImageURL, "600x450") {
		t.Errorf("Thumbnail must be canonicalized to larger variant, got %q", first.ImageURL)
	}
	if first.Subregion != "sby" {
		t.Errorf("Subregion = %q", first.Subregion)
	}
}

func TestListings_FirstStrategyWins(t *testing.T) {
	// Page carries both gallery cards and result rows; only the first
	// matching strategy's elements may be used, never merged.
	page := `<html><body>
	  <div class="gallery-card"><a class="posting-title" href="/d/a/7000000001.html"><span class="label">Card One</span></a></div>
	  <li class="result-row"><a class="result-title" href="/d/b/7000000002.html">Row One</a></li>
	</body></html>`

	listings := New("example.org").Listings(page, "sfbay")
	if len(listings) != 1 {
		t.Fatalf("Expected 1 listing from first strategy only, got %d", len(listings))
	}
	if listings[0].Title != "Card One" {
		t.Errorf("Expected gallery-card strategy to win, got %q", listings[0].Title)
	}
}

func TestListings_AnchorFallback(t *testing.T) {
	page := `<html><body>
	  <p>Nothing recognizable here.</p>
	  <a href="/sby/bik/d/fixie/7123456791.html">Fixie frame</a>
	  <a href="/about/help">Help</a>
	</body></html>`

	listings := New("example.org").Listings(page, "sfbay")
	if len(listings) != 1 {
		t.Fatalf("Expected 1 fallback listing, got %d", len(listings))
	}
	if listings[0].Title != "Fixie frame" {
		t.Errorf("Title = %q", listings[0].Title)
	}
	if listings[0].ID != "7123456791" {
		t.Errorf("ID = %q", listings[0].ID)
	}
}

func TestListings_EmptyAndGarbageInput(t *testing.T) {
	e := New("example.org")

	if got := e.Listings("", "sfbay"); len(got) != 0 {
		t.Errorf("Empty input must yield no listings, got %d", len(got))
	}
	if got := e.Listings("<<<%%% not html at all", "sfbay"); len(got) != 0 {
		t.Errorf("Garbage input must yield no listings, got %d", len(got))
	}
	if got := e.Listings("<html><body><p>no listings</p></body></html>", "sfbay"); len(got) != 0 {
		t.Errorf("Listing-free page must yield no listings, got %d", len(got))
	}
}

func TestListings_PlaceholderImageRejected(t *testing.T) {
	page := `<html><body>
	  <li class="result-row">
	    <a class="result-title" href="/d/bike/7123456789.html">Bike</a>
	    <img src="https://images.example.org/placeholders/empty.png">
	  </li>
	</body></html>`

	listings := New("example.org").Listings(page, "sfbay")
	if len(listings) != 1 {
		t.Fatalf("Expected 1 listing, got %d", len(listings))
	}
	if listings[0].ImageURL != "" {
		t.Errorf("Placeholder image must be rejected, got %q", listings[0].ImageURL)
	}
}

func TestListings_TitlelessURLlessFiltered(t *testing.T) {
	page := `<html><body>
	  <li class="result-row"><span class="result-price">$5</span></li>
	  <li class="result-row"><a class="result-title" href="/d/thing/7123456789.html">Thing</a></li>
	</body></html>`

	listings := New("example.org").Listings(page, "sfbay")
	if len(listings) != 1 {
		t.Fatalf("Record with neither title nor URL must be filtered at creation, got %d records", len(listings))
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		nil_ bool
	}{
		{"$150", 150, false},
		{"$1,250.50", 1250.50, false},
		{"free", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got := ParsePrice(c.in)
		if c.nil_ {
			if got != nil {
				t.Errorf("ParsePrice(%q) = %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil || *got != c.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDate_InvalidResolvesToNil(t *testing.T) {
	if got := ParseDate("not a date"); got != nil {
		t.Errorf("Expected nil for invalid date, got %v", got)
	}
	if got := ParseDate("2024-03-10 14:22"); got == nil {
		t.Error("Expected valid date to parse")
	}
}
