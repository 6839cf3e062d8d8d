// Package extract turns raw listing-site markup into structured records.
// Extraction is selector-chained and best-effort: unknown markup degrades
// to fewer fields or fewer records, never to an error on search pages.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/internal/urlutil"
	"github.com/adscout/scrape/pkg/models"
)

// DefaultSite is the apex domain used to resolve relative listing URLs.
const DefaultSite = "craigslist.org"

// Extractor parses search-result and detail pages for one listing site.
type Extractor struct {
	site string
}

// New creates an Extractor for the given apex domain. An empty site falls
// back to DefaultSite.
func New(site string) *Extractor {
	if site == "" {
		site = DefaultSite
	}
	return &Extractor{site: site}
}

// Site returns the extractor's apex domain.
func (e *Extractor) Site() string {
	return e.site
}

// strategy is one way of locating result elements in a search page. The
// driver tries strategies in order and stops at the first that yields at
// least one element; strategies are never merged.
type strategy struct {
	name  string
	match func(doc *goquery.Document) *goquery.Selection
}

var resultStrategies = []strategy{
	{"gallery-card", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("div.gallery-card")
	}},
	{"search-result", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("li.cl-search-result, div.cl-search-result")
	}},
	{"result-row", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("li.result-row")
	}},
	{"result-info", func(doc *goquery.Document) *goquery.Selection {
		return doc.Find("div.result-info")
	}},
}

// Listings extracts candidate records from a search-results page. An empty
// result is a valid outcome: callers distinguish "empty page" from "fetch
// failed" by the fetch status, not by errors from here.
func (e *Extractor) Listings(html, region string) []models.Listing {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base := "https://" + region + "." + e.site

	for _, st := range resultStrategies {
		sel := st.match(doc)
		if sel.Length() == 0 {
			continue
		}
		log.Debug().Str("strategy", st.name).Int("elements", sel.Length()).Msg("Result strategy matched")

		var listings []models.Listing
		sel.Each(func(_ int, item *goquery.Selection) {
			if l, ok := e.listingFromElement(item, base, region); ok {
				listings = append(listings, l)
			}
		})
		if len(listings) > 0 {
			return listings
		}
	}

	// Last resort: any anchor whose href has listing-URL shape.
	return e.listingsFromAnchors(doc, base, region)
}

// listingFromElement runs the per-field selector chains over one result
// element. Returns ok=false when both title and URL came up empty; such
// records are filtered at the point of creation, never downstream.
func (e *Extractor) listingFromElement(item *goquery.Selection, base, region string) (models.Listing, bool) {
	l := models.Listing{Region: region}

	l.Title = firstText(item,
		"a.posting-title .label",
		".titlestring",
		"a.result-title",
		".result-title",
		".result-heading a",
		"h3 a", "h3",
	)

	href := firstAttr(item, "href",
		"a.posting-title",
		"a.result-title",
		"a.cl-app-anchor",
		"a.main",
	)
	if href == "" {
		item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			h, _ := a.Attr("href")
			if urlutil.IsListingHref(h) {
				href = h
				return false
			}
			return true
		})
	}
	if href != "" {
		l.URL = urlutil.Resolve(base, href)
		l.ID = urlutil.ListingID(l.URL)
		if r, sub := urlutil.RegionFromURL(l.URL); r != "" {
			l.Region, l.Subregion = r, sub
		}
	}

	if l.Title == "" && l.URL == "" {
		return l, false
	}

	l.Price = firstText(item, ".priceinfo", ".result-price", ".price")
	l.PriceNumeric = ParsePrice(l.Price)

	l.Location = cleanLocation(firstText(item, ".meta .location", ".result-hood", ".location", ".supertitle"))

	if datetime := firstAttr(item, "datetime", "time"); datetime != "" {
		l.PostedAt = ParseDate(datetime)
	} else if title := firstAttr(item, "title", ".result-date"); title != "" {
		l.PostedAt = ParseDate(title)
	}

	if img := e.imageFromElement(item, base); img != "" {
		l.ImageURL = img
		l.Images = []string{img}
	}

	return l, true
}

// imageFromElement picks the first acceptable image candidate, skipping
// placeholder graphics and canonicalizing thumbnails to their larger-size
// variant.
func (e *Extractor) imageFromElement(item *goquery.Selection, base string) string {
	var found string
	item.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src"} {
			src, ok := img.Attr(attr)
			if !ok || src == "" {
				continue
			}
			src = urlutil.Resolve(base, src)
			if urlutil.LooksLikeImage(src) {
				found = urlutil.CanonicalImageURL(src)
				return false
			}
		}
		return true
	})
	return found
}

// listingsFromAnchors collects any anchors shaped like detail links when no
// known result strategy matched.
func (e *Extractor) listingsFromAnchors(doc *goquery.Document, base, region string) []models.Listing {
	var listings []models.Listing
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !urlutil.IsListingHref(href) {
			return
		}
		abs := urlutil.Resolve(base, href)
		if seen[abs] {
			return
		}
		seen[abs] = true

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = strings.TrimSpace(a.Find("h3, h4, .title, .label").First().Text())
		}
		if title == "" && abs == "" {
			return
		}

		l := models.Listing{
			Title:  title,
			URL:    abs,
			ID:     urlutil.ListingID(abs),
			Region: region,
		}
		if r, sub := urlutil.RegionFromURL(abs); r != "" {
			l.Region, l.Subregion = r, sub
		}
		listings = append(listings, l)
	})

	if len(listings) > 0 {
		log.Debug().Int("anchors", len(listings)).Msg("Fell back to generic anchor extraction")
	}
	return listings
}
