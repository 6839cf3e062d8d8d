package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/adscout/scrape/pkg/models"
)

// WriteJSON writes an indented JSON export of the listings to w.
func WriteJSON(w io.Writer, listings []models.Listing) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listings)
}

// SaveJSON writes the listings as indented JSON to filepath.
func SaveJSON(listings []models.Listing, filepath string) error {
	content, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, content, 0644)
}
