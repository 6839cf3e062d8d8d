// Package paginate estimates how many result pages a search spans and
// builds the offset URLs to walk them.
package paginate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// offsetParam is the query parameter carrying the result offset.
const offsetParam = "s"

// Total-count announcements, tried in order. The first hit wins.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([\d,]+)\s+results?`),
	regexp.MustCompile(`(?i)of\s+([\d,]+)`),
	regexp.MustCompile(`(?i)totalcount["'\s:=]+([\d,]+)`),
}

// Class names marking one result element in the raw markup.
var resultClasses = []string{"result-row", "cl-search-result", "gallery-card"}

// EstimateTotalPages derives the page count from the first page of results.
// It prefers an announced total count; when none is present it counts result
// elements in the markup and assumes a single page of them. The estimate is
// never below 1.
func EstimateTotalPages(pageHTML string, resultsPerPage int) int {
	if resultsPerPage < 1 {
		resultsPerPage = 1
	}

	if total, ok := announcedTotal(pageHTML); ok {
		pages := (total + resultsPerPage - 1) / resultsPerPage
		if pages < 1 {
			pages = 1
		}
		log.Debug().Int("total", total).Int("pages", pages).Msg("Page count from announced total")
		return pages
	}

	if n := countResultElements(pageHTML); n > 0 {
		pages := (n + resultsPerPage - 1) / resultsPerPage
		if pages < 1 {
			pages = 1
		}
		log.Debug().Int("elements", n).Int("pages", pages).Msg("Page count from element count")
		return pages
	}
	return 1
}

func announcedTotal(pageHTML string) (int, bool) {
	for _, re := range countPatterns {
		m := re.FindStringSubmatch(pageHTML)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			continue
		}
		return n, true
	}
	return 0, false
}

// countResultElements tokenizes the markup and counts elements whose class
// attribute carries one of the known result class names. The tokenizer is
// forgiving of broken markup where a full DOM parse is overkill.
func countResultElements(pageHTML string) int {
	z := html.NewTokenizer(strings.NewReader(pageHTML))
	count := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return count
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		if _, hasAttr := z.TagName(); !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "class" && hasResultClass(string(val)) {
				count++
				break
			}
			if !more {
				break
			}
		}
	}
}

func hasResultClass(classAttr string) bool {
	for _, field := range strings.Fields(classAttr) {
		for _, rc := range resultClasses {
			if field == rc {
				return true
			}
		}
	}
	return false
}

// BuildPageURLs returns one URL per page. Page zero is the base URL
// untouched; later pages add the offset parameter with monotonically
// increasing offsets.
func BuildPageURLs(baseURL string, pages, resultsPerPage int) ([]string, error) {
	if pages < 1 {
		pages = 1
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}

	urls := make([]string, 0, pages)
	urls = append(urls, baseURL)
	for page := 1; page < pages; page++ {
		q := u.Query()
		q.Set(offsetParam, strconv.Itoa(page*resultsPerPage))
		pu := *u
		pu.RawQuery = q.Encode()
		urls = append(urls, pu.String())
	}
	return urls, nil
}
