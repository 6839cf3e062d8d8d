// Package correlate pairs a page's structured-data entries with its
// DOM-derived listings, recovering fields (notably the detail URL) the
// structured block omits. The pairing is a weighted-score heuristic, not
// an exact join: occasional false pairings between near-identical titles
// are accepted, and exact-duplicate suppression happens later in dedupe.
package correlate

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/internal/extract"
	"github.com/adscout/scrape/internal/textutil"
	"github.com/adscout/scrape/internal/urlutil"
	"github.com/adscout/scrape/pkg/models"
)

// Scoring weights. Title overlap dominates; a shared canonical image
// identifier is the strongest secondary signal.
const (
	titleWeight    = 10.0
	priceWeight    = 5.0
	locationWeight = 3.0
	imageWeight    = 8.0
)

// candidate pairs one structured entry with its best-scoring DOM listing.
// It lives only for the duration of one page's processing.
type candidate struct {
	entry extract.StructuredEntry
	match *models.Listing
	score float64
}

// Merge produces up to one record per structured entry, each carrying the
// best available field union. Entries with no DOM candidate scoring above
// zero are not dropped: their URL falls back to a synthesized search link
// built from the entry's own title via fallbackURL.
func Merge(entries []extract.StructuredEntry, dom []models.Listing, fallbackURL func(title string) string) []models.Listing {
	merged := make([]models.Listing, 0, len(entries))

	for _, entry := range entries {
		c := bestCandidate(entry, dom)
		merged = append(merged, c.merge(fallbackURL))
	}
	return merged
}

// bestCandidate scans DOM listings in document order and keeps the one
// with the strictly highest positive score; ties keep the earlier listing.
func bestCandidate(entry extract.StructuredEntry, dom []models.Listing) candidate {
	c := candidate{entry: entry}
	for i := range dom {
		s := Score(entry, &dom[i])
		if s > c.score {
			c.score = s
			c.match = &dom[i]
		}
	}
	return c
}

// Score computes the weighted correlation score between one structured
// entry and one DOM listing.
func Score(entry extract.StructuredEntry, l *models.Listing) float64 {
	score := textutil.Similarity(entry.Title, l.Title) * titleWeight

	if entry.Price != nil && l.PriceNumeric != nil && *entry.Price == *l.PriceNumeric {
		score += priceWeight
	}

	if entry.Location != "" && l.Location != "" {
		eLoc := textutil.Normalize(entry.Location)
		dLoc := textutil.Normalize(l.Location)
		if eLoc != "" && dLoc != "" && (contains(eLoc, dLoc) || contains(dLoc, eLoc)) {
			score += locationWeight
		}
	}

	if entry.Image != "" && l.ImageURL != "" {
		eID := urlutil.ImageID(entry.Image)
		if eID != "" && eID == urlutil.ImageID(l.ImageURL) {
			score += imageWeight
		}
	}

	return score
}

// merge builds the output record: structured fields are authoritative, the
// matched DOM listing contributes its URL and DOM-only attributes.
func (c candidate) merge(fallbackURL func(title string) string) models.Listing {
	entry := c.entry

	out := models.Listing{
		Title:        entry.Title,
		PriceNumeric: entry.Price,
		PostedAt:     entry.PostedAt,
		Description:  entry.Description,
		ImageURL:     entry.Image,
	}

	if c.match != nil {
		out.URL = c.match.URL
		out.ID = c.match.ID
		out.Region = c.match.Region
		out.Subregion = c.match.Subregion
		out.Attributes = c.match.Attributes
		out.Images = c.match.Images
		if out.PriceNumeric == nil {
			out.PriceNumeric = c.match.PriceNumeric
		}
		out.Price = c.match.Price
		if out.Location == "" {
			out.Location = c.match.Location
		}
		if out.ImageURL == "" {
			out.ImageURL = c.match.ImageURL
		}
		log.Debug().Str("title", entry.Title).Float64("score", c.score).Msg("Structured entry paired with DOM listing")
	} else {
		out.URL = fallbackURL(entry.Title)
		log.Debug().Str("title", entry.Title).Msg("No DOM candidate scored above zero, synthesized search URL")
	}

	if entry.Location != "" {
		out.Location = entry.Location
	}
	return out
}

func contains(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
