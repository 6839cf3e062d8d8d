package extract

import (
	"errors"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/internal/urlutil"
	"github.com/adscout/scrape/pkg/models"
)

// ErrUnusablePage marks a detail page that carries no listing data:
// removed postings, error interstitials, block pages.
var ErrUnusablePage = errors.New("page contains no usable listing data")

// unusableMarkers are matched case-insensitively against the page body
// text. A hit is terminal for detail extraction.
var unusableMarkers = []string{
	"this posting has been deleted",
	"this posting has expired",
	"this posting has been flagged for removal",
	"access denied",
	"page not found",
	"you have been blocked",
}

// Detail extracts the full record from a posting detail page. Unlike
// search extraction this can fail: a removed or blocked page raises
// ErrUnusablePage so callers never receive a half-populated record for a
// dead posting.
func (e *Extractor) Detail(html, pageURL string) (*models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing detail page: %w", err)
	}

	bodyText := strings.ToLower(doc.Find("body").Text())
	if bodyText == "" {
		bodyText = strings.ToLower(html)
	}
	for _, marker := range unusableMarkers {
		if strings.Contains(bodyText, marker) {
			return nil, fmt.Errorf("%w: %q", ErrUnusablePage, marker)
		}
	}

	l := &models.Listing{
		URL: pageURL,
		ID:  urlutil.ListingID(pageURL),
	}
	l.Region, l.Subregion = urlutil.RegionFromURL(pageURL)

	body := doc.Selection
	l.Title = firstText(body,
		"#titletextonly",
		"h1 .postingtitletext #titletextonly",
		"h2.postingtitle",
		"h1", "title",
	)

	l.Price = firstText(body, ".postingtitletext .price", "span.price", ".price")
	l.PriceNumeric = ParsePrice(l.Price)

	l.Location = cleanLocation(firstText(body, ".postingtitletext small", ".postingtitletext .housing", ".mapaddress"))

	if datetime := firstAttr(body, "datetime", "time.date.timeago", "p.postinginfo time", "time"); datetime != "" {
		l.PostedAt = ParseDate(datetime)
	}

	e.detailImages(body, pageURL, l)
	e.detailAttributes(body, l)
	e.detailDescription(body, l)

	if l.Title == "" && l.URL == "" {
		return nil, fmt.Errorf("%w: no title or URL", ErrUnusablePage)
	}
	return l, nil
}

func (e *Extractor) detailImages(body *goquery.Selection, pageURL string, l *models.Listing) {
	seen := make(map[string]bool)
	add := func(src string) {
		if src == "" {
			return
		}
		src = urlutil.Resolve(pageURL, src)
		if !urlutil.LooksLikeImage(src) {
			return
		}
		src = urlutil.CanonicalImageURL(src)
		if seen[src] {
			return
		}
		seen[src] = true
		l.Images = append(l.Images, src)
	}

	body.Find("#thumbs a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		add(href)
	})
	body.Find(".gallery img, .swipe img, .slide img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		add(src)
	})

	if len(l.Images) > 0 {
		l.ImageURL = l.Images[0]
	}
}

// detailAttributes fills the open attribute bag. The source markup mixes
// two conventions inside the same block: "key: value" lines and standalone
// flag lines ("pets allowed"), which become boolean true entries.
func (e *Extractor) detailAttributes(body *goquery.Selection, l *models.Listing) {
	body.Find(".attrgroup span, p.attrgroup span, .mapAndAttrs .attr").Each(func(_ int, span *goquery.Selection) {
		line := strings.TrimSpace(span.Text())
		if line == "" {
			return
		}
		if key, value, found := strings.Cut(line, ":"); found {
			l.SetAttribute(strings.TrimSpace(key), strings.TrimSpace(value))
		} else {
			l.SetAttribute(line, true)
		}
	})
}

func (e *Extractor) detailDescription(body *goquery.Selection, l *models.Listing) {
	section := body.Find("#postingbody").First()
	if section.Length() == 0 {
		section = body.Find(".posting-description, .body").First()
	}
	if section.Length() == 0 {
		return
	}

	// The posting body is arbitrary user HTML; convert it to markdown so
	// downstream consumers get portable text.
	sectionHTML, err := section.Html()
	if err != nil || strings.TrimSpace(sectionHTML) == "" {
		l.Description = strings.TrimSpace(section.Text())
		return
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	markdown, err := converter.ConvertString(sectionHTML)
	if err != nil {
		log.Debug().Err(err).Msg("Markdown conversion failed, keeping plain text")
		l.Description = strings.TrimSpace(section.Text())
		return
	}
	l.Description = strings.TrimSpace(markdown)
}
