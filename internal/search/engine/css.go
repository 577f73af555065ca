package engine

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vk/searchengine/internal/search/query"
	"github.com/vk/searchengine/internal/search/result"
)

// CSSEngine scrapes an HTML upstream with CSS selectors.
type CSSEngine struct {
	base
	// ResultSel selects one element per result.
	ResultSel string
	// TitleSel selects the title link inside a result element. Its text is
	// the title and its href the result URL, unless URLSel overrides it.
	TitleSel string
	// URLSel optionally selects the element carrying the href.
	URLSel string
	// TextSel selects the snippet element.
	TextSel string
	// SrcSel selects the img element for image engines.
	SrcSel string
}

// NewCSSEngine creates a CSS-selector engine. src may be empty except for
// image engines.
func NewCSSEngine(cfg Config, resultSel, titleSel, urlSel, textSel, srcSel string) (*CSSEngine, error) {
	if cfg.Mode == "" {
		cfg.Mode = query.ModeWeb
	}
	if cfg.Mode == query.ModeImages && srcSel == "" {
		return nil, fmt.Errorf("engine %s: image engines require a src selector", cfg.Name)
	}
	return &CSSEngine{
		base:      base{cfg: cfg},
		ResultSel: resultSel,
		TitleSel:  titleSel,
		URLSel:    urlSel,
		TextSel:   textSel,
		SrcSel:    srcSel,
	}, nil
}

// ParseResponse extracts results from the HTML document. Relative URLs are
// resolved against the final response URL.
func (e *CSSEngine) ParseResponse(resp *http.Response) ([]result.Result, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing html: %w", e.Name(), err)
	}

	pageURL := resp.Request.URL

	var results []result.Result
	doc.Find(e.ResultSel).Each(func(_ int, sel *goquery.Selection) {
		titleSel := sel.Find(e.TitleSel).First()
		title := strings.TrimSpace(titleSel.Text())
		if title == "" {
			return
		}

		hrefSel := titleSel
		if e.URLSel != "" {
			hrefSel = sel.Find(e.URLSel).First()
		}
		href, ok := hrefSel.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved := resolveURL(pageURL, href)
		if resolved == "" {
			return
		}

		text := strings.TrimSpace(sel.Find(e.TextSel).First().Text())

		if e.Mode() == query.ModeImages {
			src, _ := sel.Find(e.SrcSel).First().Attr("src")
			if src == "" {
				return
			}
			results = append(results, result.Result{
				Kind:  result.KindImage,
				Title: title,
				URL:   resolved,
				Text:  text,
				Src:   resolveURL(pageURL, src),
			})
			return
		}

		results = append(results, result.Result{
			Kind:  result.KindWeb,
			Title: title,
			URL:   resolved,
			Text:  text,
		})
	})

	return results, nil
}

// resolveURL resolves href against the page URL, returning "" for
// unparseable input.
func resolveURL(page *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if page == nil {
		return ref.String()
	}
	return page.ResolveReference(ref).String()
}
