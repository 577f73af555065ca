package engine

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/PaesslerAG/jsonpath"

	"github.com/vk/searchengine/internal/search/query"
	"github.com/vk/searchengine/internal/search/result"
)

// JSONEngine extracts results from a JSON API with JSONPath expressions.
// Item-level paths are evaluated relative to each element the results path
// selected.
type JSONEngine struct {
	base
	ResultsPath string
	TitlePath   string
	URLPath     string
	TextPath    string
	SrcPath     string
}

// NewJSONEngine creates a JSONPath engine.
func NewJSONEngine(cfg Config, resultsPath, titlePath, urlPath, textPath, srcPath string) (*JSONEngine, error) {
	if cfg.Mode == "" {
		cfg.Mode = query.ModeWeb
	}
	if cfg.Mode == query.ModeImages && srcPath == "" {
		return nil, fmt.Errorf("engine %s: image engines require a src path", cfg.Name)
	}
	return &JSONEngine{
		base:        base{cfg: cfg},
		ResultsPath: resultsPath,
		TitlePath:   titlePath,
		URLPath:     urlPath,
		TextPath:    textPath,
		SrcPath:     srcPath,
	}, nil
}

// ParseResponse decodes the JSON body and walks the configured paths.
func (e *JSONEngine) ParseResponse(resp *http.Response) ([]result.Result, error) {
	var root any
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		return nil, fmt.Errorf("%s: decoding json: %w", e.Name(), err)
	}

	items, err := jsonpath.Get(e.ResultsPath, root)
	if err != nil {
		// A missing results array means zero results, not a failure.
		return nil, nil
	}
	list, ok := items.([]any)
	if !ok {
		list = []any{items}
	}

	var results []result.Result
	for _, item := range list {
		title := stringAt(item, e.TitlePath)
		rawURL := stringAt(item, e.URLPath)
		if title == "" || rawURL == "" {
			continue
		}
		text := stringAt(item, e.TextPath)

		if e.Mode() == query.ModeImages {
			src := stringAt(item, e.SrcPath)
			if src == "" {
				continue
			}
			results = append(results, result.Result{
				Kind:  result.KindImage,
				Title: title,
				URL:   rawURL,
				Text:  text,
				Src:   src,
			})
			continue
		}

		results = append(results, result.Result{
			Kind:  result.KindWeb,
			Title: title,
			URL:   rawURL,
			Text:  text,
		})
	}

	return results, nil
}

// stringAt evaluates a JSONPath against item and returns the value as a
// string, or "" when the path is empty, missing, or not a string.
func stringAt(item any, path string) string {
	if path == "" {
		return ""
	}
	v, err := jsonpath.Get(path, item)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
