package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/adscout/scrape/pkg/models"
)

// WriteMarkdown renders the listings as a Markdown report, one section per
// listing. Descriptions are already Markdown when they came from a detail
// page, so they embed as-is.
func WriteMarkdown(w io.Writer, listings []models.Listing) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Listings (%d)\n", len(listings))

	for i := range listings {
		l := &listings[i]
		b.WriteString("\n## ")
		if l.Title != "" {
			b.WriteString(l.Title)
		} else {
			b.WriteString("(untitled)")
		}
		b.WriteString("\n\n")

		if l.Price != "" {
			fmt.Fprintf(&b, "- **Price:** %s\n", l.Price)
		} else if l.PriceNumeric != nil {
			fmt.Fprintf(&b, "- **Price:** %g\n", *l.PriceNumeric)
		}
		if l.Location != "" {
			fmt.Fprintf(&b, "- **Location:** %s\n", l.Location)
		}
		if l.PostedAt != nil {
			fmt.Fprintf(&b, "- **Posted:** %s\n", l.PostedAt.Format(time.RFC1123))
		}
		if l.URL != "" {
			fmt.Fprintf(&b, "- **Link:** <%s>\n", l.URL)
		}
		if l.ImageURL != "" {
			fmt.Fprintf(&b, "- **Image:** <%s>\n", l.ImageURL)
		}
		keys := make([]string, 0, len(l.Attributes))
		for k := range l.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- **%s:** %v\n", k, l.Attributes[k])
		}

		if l.Description != "" {
			b.WriteString("\n")
			b.WriteString(strings.TrimSpace(l.Description))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveMarkdown renders the listings to a Markdown file at filepath.
func SaveMarkdown(listings []models.Listing, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteMarkdown(file, listings)
}
