package extract

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// StructuredEntry is one item from a page's embedded structured-data block
// (JSON-LD). Structured entries are authoritative for title, price, date,
// and description, but usually omit the detail URL the DOM carries.
type StructuredEntry struct {
	Title       string
	Price       *float64
	Currency    string
	Description string
	Image       string
	Location    string
	PostedAt    *time.Time
}

// StructuredEntries parses every application/ld+json block on a page into
// a flat list of entries. Unparseable blocks are skipped; the result may
// be empty, which simply means the page offered no structured data.
func StructuredEntries(html string) []StructuredEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var entries []StructuredEntry
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, script *goquery.Selection) {
		text := strings.TrimSpace(script.Text())
		if text == "" {
			return
		}
		value, ok := parseLoose(text)
		if !ok {
			return
		}
		collectEntries(value, &entries)
	})
	return entries
}

// parseLoose tries strict JSON first and falls back to evaluating the
// block as a JavaScript expression: sites routinely embed object literals
// with trailing commas or unquoted keys that encoding/json rejects.
func parseLoose(text string) (any, bool) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value, true
	}

	vm := goja.New()
	result, err := vm.RunString("(" + text + ")")
	if err != nil {
		log.Debug().Err(err).Msg("Structured-data block unparseable as JSON or JS")
		return nil, false
	}
	return result.Export(), true
}

// collectEntries walks a decoded structured-data value, descending into
// arrays, @graph, and itemListElement containers.
func collectEntries(value any, entries *[]StructuredEntry) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			collectEntries(item, entries)
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			collectEntries(graph, entries)
			return
		}
		if list, ok := v["itemListElement"]; ok {
			collectEntries(list, entries)
			return
		}
		if item, ok := v["item"]; ok {
			collectEntries(item, entries)
			return
		}
		if entry, ok := entryFromObject(v); ok {
			*entries = append(*entries, entry)
		}
	}
}

func entryFromObject(obj map[string]any) (StructuredEntry, bool) {
	entry := StructuredEntry{
		Title:       stringField(obj, "name"),
		Description: stringField(obj, "description"),
	}
	if entry.Title == "" {
		return entry, false
	}

	if offers, ok := obj["offers"].(map[string]any); ok {
		entry.Price = numberField(offers, "price")
		entry.Currency = stringField(offers, "priceCurrency")
	}
	if entry.Price == nil {
		entry.Price = numberField(obj, "price")
	}

	switch img := obj["image"].(type) {
	case string:
		entry.Image = img
	case []any:
		if len(img) > 0 {
			if s, ok := img[0].(string); ok {
				entry.Image = s
			}
		}
	}

	if addr, ok := obj["address"].(map[string]any); ok {
		entry.Location = stringField(addr, "addressLocality")
	}
	if entry.Location == "" {
		entry.Location = stringField(obj, "areaServed")
	}

	if posted := stringField(obj, "datePosted"); posted != "" {
		entry.PostedAt = ParseDate(posted)
	}

	return entry, true
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func numberField(obj map[string]any, key string) *float64 {
	switch v := obj[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	case string:
		return ParsePrice(v)
	}
	return nil
}
