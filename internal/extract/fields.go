package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var priceDigits = regexp.MustCompile(`[\d][\d,]*(?:\.\d+)?`)

// firstText walks a selector chain and returns the first non-empty trimmed
// text it finds.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr walks a selector chain and returns the first non-empty value of
// attr it finds.
func firstAttr(s *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := s.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ParsePrice extracts a numeric value from raw price text. Dirty input
// yields nil, never an error.
func ParsePrice(text string) *float64 {
	m := priceDigits.FindString(text)
	if m == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(m, ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"Jan 2 15:04",
	"Jan 2",
}

// ParseDate best-effort parses a posting timestamp. Invalid strings resolve
// to nil, never to an error.
func ParseDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			if t.Year() == 0 {
				now := time.Now()
				t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
			}
			return &t
		}
	}
	return nil
}

// cleanLocation trims a neighborhood label and strips the parentheses the
// site wraps it in.
func cleanLocation(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.TrimSpace(s)
}
