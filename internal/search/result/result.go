// Package result defines the search result types and the cross-engine
// merging and rating of results.
package result

import (
	"net/url"
	"strings"
)

// Kind discriminates the result variants.
type Kind int

const (
	KindWeb Kind = iota
	KindImage
	// KindAnswer marks instant-answer results. None of the built-in
	// engines emit it yet; the renderer treats it like a web result.
	KindAnswer
)

// Result is a single hit returned by one engine.
type Result struct {
	Kind  Kind
	Title string
	URL   string
	// Text is the snippet for web results and the caption for images.
	Text string
	// Src is the image source, set only for KindImage.
	Src string
}

// Rated is a merged result with its accumulated score and the engines that
// returned it.
type Rated struct {
	Result
	Score   float64
	Engines []string
}

// Host returns the lowercase hostname of the result's URL, or "" when the
// URL does not parse.
func (r Result) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// key normalizes a URL so the same page reported by several engines merges
// into one rated result: scheme and fragment are ignored, the host is
// lowercased, and a trailing slash is trimmed.
func key(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.ToLower(u.Host)
	path := strings.TrimSuffix(u.Path, "/")
	k := host + path
	if u.RawQuery != "" {
		k += "?" + u.RawQuery
	}
	return k
}
