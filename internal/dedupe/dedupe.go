// Package dedupe removes near-duplicate listings from merged result sets.
// Cross-posted items carry slightly reworded titles, so equality checks
// miss them; token-overlap similarity catches most while leaving genuinely
// distinct items alone.
package dedupe

import (
	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/internal/textutil"
	"github.com/adscout/scrape/pkg/models"
)

// threshold is the similarity above which two titles count as the same
// item. Scores at exactly the threshold are kept as distinct.
const threshold = 0.85

// Listings returns the input with near-duplicate titles removed. The first
// occurrence wins and input order is preserved. Listings without a title
// are never treated as duplicates of each other.
func Listings(in []models.Listing) []models.Listing {
	if len(in) < 2 {
		return in
	}

	out := make([]models.Listing, 0, len(in))
	kept := make([]string, 0, len(in))

	for _, l := range in {
		norm := textutil.Normalize(l.Title)
		if norm == "" {
			out = append(out, l)
			continue
		}

		dup := false
		for _, seen := range kept {
			if textutil.Similarity(norm, seen) > threshold {
				dup = true
				log.Debug().Str("title", l.Title).Msg("Dropping near-duplicate listing")
				break
			}
		}
		if dup {
			continue
		}

		kept = append(kept, norm)
		out = append(out, l)
	}
	return out
}
