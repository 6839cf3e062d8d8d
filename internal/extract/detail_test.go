package extract

import (
	"errors"
	"strings"
	"testing"
)

const detailPage = `<!DOCTYPE html>
<html><head><title>Road Bike 21in</title></head><body>
<h1><span class="postingtitletext"><span id="titletextonly">Road Bike 21in</span>
<span class="price">$150</span> <small>(mission district)</small></span></h1>
<p class="postinginfo">posted: <time class="date timeago" datetime="2024-03-10T14:22:00-07:00"></time></p>
<div id="thumbs">
  <a href="https://images.example.org/00A0A_abc123xyz_50x50c.jpg"></a>
  <a href="https://images.example.org/00B0B_def456uvw_50x50c.jpg"></a>
</div>
<p class="attrgroup">
  <span>condition: like new</span>
  <span>frame size: 21in</span>
  <span>electric assist</span>
</p>
<section id="postingbody">Great <b>road bike</b>, barely used.</section>
</body></html>`

func TestDetail_FullRecord(t *testing.T) {
	e := New("example.org")
	url := "https://sfbay.example.org/sby/bik/d/road-bike/7123456789.html"

	l, err := e.Detail(detailPage, url)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}

	if l.Title != "Road Bike 21in" {
		t.Errorf("Title = %q", l.Title)
	}
	if l.ID != "7123456789" {
		t.Errorf("ID = %q", l.ID)
	}
	if l.Region != "sfbay" || l.Subregion != "sby" {
		t.Errorf("Region/Subregion = %q/%q", l.Region, l.Subregion)
	}
	if l.PriceNumeric == nil || *l.PriceNumeric != 150 {
		t.Errorf("PriceNumeric = %v", l.PriceNumeric)
	}
	if l.Location != "mission district" {
		t.Errorf("Location = %q", l.Location)
	}
	if l.PostedAt == nil {
		t.Error("Expected parsed posting time")
	}
	if len(l.Images) != 2 {
		t.Errorf("Expected 2 images, got %d", len(l.Images))
	}
	for _, img := range l.Images {
		if !strings.Contains(img, "600x450") {
			t.Errorf("Image not canonicalized: %q", img)
		}
	}

	if got, ok := l.Attributes["condition"].(string); !ok || got != "like new" {
		t.Errorf("Attributes[condition] = %v", l.Attributes["condition"])
	}
	if got, ok := l.Attributes["electric assist"].(bool); !ok || !got {
		t.Errorf("Flag attribute must be boolean true, got %v", l.Attributes["electric assist"])
	}

	if !strings.Contains(l.Description, "**road bike**") {
		t.Errorf("Expected markdown-converted description, got %q", l.Description)
	}
}

func TestDetail_RemovedPosting(t *testing.T) {
	page := `<html><body><h2>This posting has been deleted by its author.</h2></body></html>`

	_, err := New("example.org").Detail(page, "https://sfbay.example.org/d/x/7123456789.html")
	if !errors.Is(err, ErrUnusablePage) {
		t.Errorf("Expected ErrUnusablePage, got %v", err)
	}
}

func TestDetail_AccessDeniedBody(t *testing.T) {
	// The fetcher's synthetic denial body must trip the unusable check.
	_, err := New("example.org").Detail("access denied", "https://sfbay.example.org/d/x/7123456789.html")
	if !errors.Is(err, ErrUnusablePage) {
		t.Errorf("Expected ErrUnusablePage for denial body, got %v", err)
	}
}

func TestStructuredEntries_StrictJSON(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	{"@context":"https://schema.org","@type":"ItemList","itemListElement":[
	  {"item":{"@type":"Product","name":"Road Bike 21in","offers":{"price":"150","priceCurrency":"USD"},
	   "image":"https://images.example.org/00A0A_abc123xyz_600x450.jpg"}},
	  {"item":{"@type":"Product","name":"Oak Desk","offers":{"price":80.0,"priceCurrency":"USD"}}}
	]}</script></head><body></body></html>`

	entries := StructuredEntries(page)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Road Bike 21in" {
		t.Errorf("Title = %q", entries[0].Title)
	}
	if entries[0].Price == nil || *entries[0].Price != 150 {
		t.Errorf("Price = %v", entries[0].Price)
	}
	if entries[1].Price == nil || *entries[1].Price != 80 {
		t.Errorf("Price = %v", entries[1].Price)
	}
}

func TestStructuredEntries_JSObjectLiteralFallback(t *testing.T) {
	// Trailing comma and unquoted keys reject strict JSON; the relaxed
	// path must still recover the entry.
	page := `<html><head><script type="application/ld+json">
	{name: "Vintage Desk", price: "200", description: "solid oak",}
	</script></head><body></body></html>`

	entries := StructuredEntries(page)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry via relaxed parsing, got %d", len(entries))
	}
	if entries[0].Title != "Vintage Desk" {
		t.Errorf("Title = %q", entries[0].Title)
	}
	if entries[0].Price == nil || *entries[0].Price != 200 {
		t.Errorf("Price = %v", entries[0].Price)
	}
}

func TestStructuredEntries_NoBlocks(t *testing.T) {
	if got := StructuredEntries("<html><body><p>plain page</p></body></html>"); len(got) != 0 {
		t.Errorf("Expected no entries, got %d", len(got))
	}
}
