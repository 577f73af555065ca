// Package engine defines the upstream search engine abstraction: an engine
// turns a parsed query into an HTTP request and parses the response into
// results. Engines are data-defined (a CSS-selector engine for HTML
// upstreams, a JSONPath engine for JSON APIs) and queried concurrently by
// the Searcher.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vk/searchengine/internal/search/query"
	"github.com/vk/searchengine/internal/search/result"
)

// StatusCodeError is returned when an upstream engine responds outside 2xx.
type StatusCodeError struct {
	Engine string
	Code   int
	Status string
}

// Error implements the error interface.
func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Engine, e.Status)
}

// Engine is a single upstream search provider.
type Engine interface {
	Name() string
	Mode() query.Mode
	Weight() float64
	Extensions() query.Extensions
	// SupportsLanguage reports whether the engine can serve queries in the
	// given base language.
	SupportsLanguage(lang string) bool
	// NewRequest builds the upstream request for a query.
	NewRequest(ctx context.Context, q *query.ParsedQuery) (*http.Request, error)
	// ParseResponse extracts results from a successful upstream response.
	ParseResponse(resp *http.Response) ([]result.Result, error)
}

// Config carries the metadata and request shape shared by all engine kinds.
type Config struct {
	Name string
	Mode query.Mode
	// Weight scales this engine's contribution to result scores.
	Weight float64
	// Languages restricts the engine to base language codes; empty means
	// the engine serves every language.
	Languages []string
	// Extensions are the query features the engine supports.
	Extensions query.Extensions
	// Method is GET or POST; POST sends the parameters as a JSON body.
	Method string
	// URL is the search endpoint.
	URL string
	// QueryKey is the parameter carrying the query string, "q" by default.
	QueryKey string
	// Params are fixed extra parameters sent with every request.
	Params url.Values
	// PageParam, when set, carries the 1-based page number for engines
	// that support paging.
	PageParam string
	// UserAgent overrides the browser User-Agent sent upstream.
	UserAgent string
}

// defaultUserAgent is sent when Config.UserAgent is empty. Several
// upstreams reject requests without a browser User-Agent.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:128.0) Gecko/20100101 Firefox/128.0"

type base struct {
	cfg Config
}

func (b *base) Name() string                 { return b.cfg.Name }
func (b *base) Weight() float64              { return b.cfg.Weight }
func (b *base) Extensions() query.Extensions { return b.cfg.Extensions }

func (b *base) Mode() query.Mode {
	if b.cfg.Mode == "" {
		return query.ModeWeb
	}
	return b.cfg.Mode
}

func (b *base) SupportsLanguage(lang string) bool {
	if len(b.cfg.Languages) == 0 {
		return true
	}
	for _, l := range b.cfg.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// NewRequest builds the upstream request: query parameters on the URL for
// GET, a JSON object body for POST.
func (b *base) NewRequest(ctx context.Context, q *query.ParsedQuery) (*http.Request, error) {
	queryKey := b.cfg.QueryKey
	if queryKey == "" {
		queryKey = "q"
	}

	params := url.Values{}
	for k, vs := range b.cfg.Params {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set(queryKey, q.String())
	if b.cfg.PageParam != "" && q.Page > 1 {
		params.Set(b.cfg.PageParam, strconv.Itoa(q.Page))
	}

	method := b.cfg.Method
	if method == "" {
		method = http.MethodGet
	}

	if method == http.MethodPost {
		body := map[string]string{}
		for k := range params {
			body[k] = params.Get(k)
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, method, b.cfg.URL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", b.userAgent())
		return req, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, b.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", b.userAgent())
	return req, nil
}

func (b *base) userAgent() string {
	if b.cfg.UserAgent != "" {
		return b.cfg.UserAgent
	}
	return defaultUserAgent
}
