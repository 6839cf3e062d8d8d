package models

import "time"

// Listing represents one classified-ad entry extracted from a listing site.
//
// A listing with both an empty Title and an empty URL is never emitted by
// the extractor; everything else is best-effort and may be partially
// populated depending on what the source markup carried.
type Listing struct {
	ID           string         `json:"id,omitempty"`
	Title        string         `json:"title"`
	URL          string         `json:"url"`
	Price        string         `json:"price,omitempty"`
	PriceNumeric *float64       `json:"price_numeric,omitempty"`
	Location     string         `json:"location,omitempty"`
	PostedAt     *time.Time     `json:"posted_at,omitempty"`
	Description  string         `json:"description,omitempty"`
	ImageURL     string         `json:"image_url,omitempty"`
	Images       []string       `json:"images,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Region       string         `json:"region,omitempty"`
	Subregion    string         `json:"subregion,omitempty"`
}

// SetAttribute records a posting metadata entry. Values are either strings
// (for "key: value" pairs) or booleans (for standalone flags). The bag is
// intentionally schema-less: the source domain has unbounded, inconsistent
// metadata keys.
func (l *Listing) SetAttribute(key string, value any) {
	if l.Attributes == nil {
		l.Attributes = make(map[string]any)
	}
	l.Attributes[key] = value
}

// FetchResponse is the result of one resilient fetch. Target-side failures
// never surface as errors; after retry exhaustion the fetcher returns a
// synthetic 403 response so callers apply uniform handling.
type FetchResponse struct {
	Status    int               `json:"status"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"body,omitempty"`
	FromCache bool              `json:"from_cache"`
	Attempts  int               `json:"attempts"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// OK reports whether the response status is a 2xx success.
func (r *FetchResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// RequestOptions configures a single fetch operation.
type RequestOptions struct {
	Method       string
	Headers      map[string]string
	Timeout      time.Duration
	Proxy        string
	UseBrowser   bool
	WaitSelector string // selector whose appearance signals content is ready (browser mode)
	ScrollPages  int    // max scroll-and-wait cycles for infinite-scroll pages
}

// SearchParams describes one search request against the pipeline.
type SearchParams struct {
	Query        string
	Category     string
	Regions      []string
	MinPrice     *int
	MaxPrice     *int
	Limit        int
	FetchDetails bool
	UseBrowser   bool
}
