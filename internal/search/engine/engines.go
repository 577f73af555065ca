package engine

import (
	"net/url"

	"github.com/vk/searchengine/internal/search/query"
)

// DefaultEngines returns the built-in upstream engine set.
func DefaultEngines() []Engine {
	return []Engine{
		mustJSON(Config{
			Name:       "alexandria",
			Weight:     1.0,
			Languages:  []string{"en"},
			Extensions: query.ExtSite,
			URL:        "https://api.alexandria.org",
			Params:     url.Values{"a": {"1"}, "c": {"a"}},
		}, "$.results[*]", "$.title", "$.url", "$.snippet", ""),

		mustCSS(Config{
			Name:       "mojeek",
			Weight:     1.0,
			Extensions: query.ExtSite | query.ExtPaging,
			URL:        "https://www.mojeek.com/search",
			PageParam:  "s",
		}, "ul.results-standard > li", "h2 > a.title", "", "p.s", ""),

		mustCSS(Config{
			Name:       "mojeek images",
			Mode:       query.ModeImages,
			Weight:     1.0,
			Extensions: query.ExtSite,
			URL:        "https://www.mojeek.com/search",
			Params:     url.Values{"fmt": {"images"}},
		}, "ul.results-image > li", "a", "", "p.s", "img"),

		mustCSS(Config{
			Name:       "right dao",
			Weight:     1.0,
			Languages:  []string{"en"},
			Extensions: query.ExtQuotes | query.ExtSite,
			URL:        "https://rightdao.com/search",
		}, "div.item", "div.title > a", "", "div.description", ""),

		mustJSON(Config{
			Name:       "sese",
			Weight:     1.0,
			Extensions: query.ExtSite,
			URL:        "https://se-proxy.azurewebsites.net/api/search",
			Params:     url.Values{"slice": {"0:12"}},
		}, `$["结果"][*]`, `$["信息"]["标题"]`, `$["网址"]`, `$["信息"]["描述"]`, ""),

		mustCSS(Config{
			Name:       "stract",
			Weight:     1.0,
			Languages:  []string{"en"},
			Extensions: query.ExtQuotes | query.ExtSite | query.ExtPaging,
			URL:        "https://stract.com/search",
			PageParam:  "p",
		}, "div.grid > div.flex.min-w-0.grow.flex-col", "a.title", "", "div.snippet", ""),
	}
}

// The engine table is static, so a bad definition is a programming error.

func mustCSS(cfg Config, resultSel, titleSel, urlSel, textSel, srcSel string) Engine {
	e, err := NewCSSEngine(cfg, resultSel, titleSel, urlSel, textSel, srcSel)
	if err != nil {
		panic(err)
	}
	return e
}

func mustJSON(cfg Config, resultsPath, titlePath, urlPath, textPath, srcPath string) Engine {
	e, err := NewJSONEngine(cfg, resultsPath, titlePath, urlPath, textPath, srcPath)
	if err != nil {
		panic(err)
	}
	return e
}
