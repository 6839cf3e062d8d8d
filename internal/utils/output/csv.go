package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adscout/scrape/pkg/models"
)

var csvHeaders = []string{
	"id", "title", "url", "price", "price_numeric",
	"location", "region", "subregion", "posted_at", "image_url",
}

// WriteCSV writes the listings as CSV rows to w. The column set is fixed;
// free-form attributes are not exported here, use JSON for those.
func WriteCSV(w io.Writer, listings []models.Listing) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for i := range listings {
		if err := cw.Write(csvRow(&listings[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the listings to a CSV file. Returns an error on failure.
func SaveCSV(listings []models.Listing, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, listings)
}

func csvRow(l *models.Listing) []string {
	var price, posted string
	if l.PriceNumeric != nil {
		price = fmt.Sprintf("%g", *l.PriceNumeric)
	}
	if l.PostedAt != nil {
		posted = l.PostedAt.Format(time.RFC3339)
	}
	return []string{
		l.ID, l.Title, l.URL, l.Price, price,
		l.Location, l.Region, l.Subregion, posted, l.ImageURL,
	}
}
