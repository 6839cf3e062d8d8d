// Package urlutil centralizes URL validation, resolution, and the listing
// site's URL shape heuristics (detail paths, numeric IDs, image naming).
package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// listing detail URLs end in a numeric posting ID plus extension,
	// e.g. /d/road-bike/7123456789.html
	numericIDSuffix = regexp.MustCompile(`/(\d{6,})(?:\.html?)?$`)

	// thumbnail size suffix in image file names, e.g. 3n4o_abc123_50x50c.jpg
	imageSizeSuffix = regexp.MustCompile(`_(\d+x\d+c?)\.(jpe?g|png|webp|gif)$`)

	imageExtension = regexp.MustCompile(`\.(jpe?g|png|webp|gif)(\?.*)?$`)
)

// thumbSize and fullSize are the site's naming convention for gallery
// thumbnails and their larger-size variants.
const (
	thumbSize = "50x50c"
	fullSize  = "600x450"
)

// minImageURLLen rejects sentinel no-image graphics, which on the target
// site are short paths like /images/empty.png.
const minImageURLLen = 30

var placeholderMarkers = []string{"empty", "blank", "spacer", "placeholder", "no-image", "noimage"}

// Validate checks that urlStr is an absolute http(s) URL with a host.
func Validate(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

// Resolve resolves a possibly-relative href against a base URL.
func Resolve(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// IsListingHref reports whether an anchor href looks like a posting detail
// URL: it contains a /d/ detail-path segment or ends in a long numeric ID
// with an optional .html extension.
func IsListingHref(href string) bool {
	if href == "" {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	path := u.Path
	if strings.Contains(path, "/d/") {
		return true
	}
	return numericIDSuffix.MatchString(path)
}

// ListingID extracts the numeric posting ID from a detail URL, or returns
// the empty string when the URL carries none.
func ListingID(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	if m := numericIDSuffix.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return ""
}

// RegionFromURL extracts the region (the host's city segment) and optional
// subregion (the first path segment before the detail path) from a listing
// URL. Either may be empty.
func RegionFromURL(urlStr string) (region, subregion string) {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "", ""
	}

	host := strings.TrimPrefix(u.Host, "www.")
	if i := strings.Index(host, "."); i > 0 {
		region = host[:i]
	}

	// Detail paths look like /<subregion>/<category>/d/<slug>/<id>.html or
	// /<category>/d/<slug>/<id>.html when the region has no subareas.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 4 && segments[2] == "d" {
		subregion = segments[0]
	}
	return region, subregion
}

// CanonicalImageURL rewrites a thumbnail URL to its larger-size variant
// when the file name follows the site's size-suffix convention.
func CanonicalImageURL(src string) string {
	if strings.Contains(src, "_"+thumbSize+".") {
		return strings.Replace(src, "_"+thumbSize+".", "_"+fullSize+".", 1)
	}
	return src
}

// ImageID returns the size-independent identifier of an image URL (the
// file name with its size suffix and extension stripped), so the same
// photo at different sizes compares equal. Returns "" when the URL does
// not follow the naming convention.
func ImageID(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	base := u.Path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if m := imageSizeSuffix.FindStringIndex(base); m != nil {
		return base[:m[0]]
	}
	return ""
}

// LooksLikeImage reports whether src is plausibly a real listing photo:
// long enough to not be a sentinel graphic, a known image extension, and
// free of placeholder markers.
func LooksLikeImage(src string) bool {
	if len(src) < minImageURLLen {
		return false
	}
	if strings.HasPrefix(src, "data:") {
		return false
	}
	if !imageExtension.MatchString(strings.ToLower(src)) {
		return false
	}
	lower := strings.ToLower(src)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
