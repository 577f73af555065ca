// Package query parses the raw search input into the structured form the
// engines consume: words and quoted phrases, a search mode, a page number, a
// language, and an optional site filter.
package query

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Mode selects which kind of results a search returns.
type Mode string

const (
	ModeWeb    Mode = "web"
	ModeImages Mode = "images"
)

// ParseMode validates a raw mode value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWeb, ModeImages:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid search mode %q", s)
}

// Extensions is a bitmask of query features an engine must support to be
// eligible for a query.
type Extensions uint8

const (
	// ExtQuotes marks support for exact phrases.
	ExtQuotes Extensions = 1 << iota
	// ExtSite marks support for site: filters.
	ExtSite
	// ExtPaging marks support for pages beyond the first.
	ExtPaging
)

// Contains reports whether every extension in other is present in e.
func (e Extensions) Contains(other Extensions) bool {
	return e&other == other
}

// Term is a single word or quoted phrase of a query.
type Term struct {
	Text   string
	Phrase bool
}

// ParsedQuery is the structured form of a search request.
type ParsedQuery struct {
	Terms []Term
	Mode  Mode
	Page  int
	// Lang is the base language code, e.g. "en" or "de".
	Lang string
	// Site restricts results to one host when non-empty.
	Site string
}

// String reassembles the query the way upstream engines expect it: phrases
// quoted, followed by the site filter if any.
func (q *ParsedQuery) String() string {
	parts := make([]string, 0, len(q.Terms)+1)
	for _, term := range q.Terms {
		if term.Phrase {
			parts = append(parts, `"`+term.Text+`"`)
		} else {
			parts = append(parts, term.Text)
		}
	}
	if q.Site != "" {
		parts = append(parts, "site:"+q.Site)
	}
	return strings.Join(parts, " ")
}

// Words returns the plain text of every term, for highlighting.
func (q *ParsedQuery) Words() []string {
	words := make([]string, 0, len(q.Terms))
	for _, term := range q.Terms {
		words = append(words, term.Text)
	}
	return words
}

// RequiredExtensions returns the features this query actually uses.
func (q *ParsedQuery) RequiredExtensions() Extensions {
	var ext Extensions
	for _, term := range q.Terms {
		if term.Phrase {
			ext |= ExtQuotes
			break
		}
	}
	if q.Site != "" {
		ext |= ExtSite
	}
	if q.Page > 1 {
		ext |= ExtPaging
	}
	return ext
}

// Parser turns raw query strings into ParsedQuery values. Language selection
// matches the Accept-Language header against the supported locales unless
// the query carries an explicit lang: filter.
type Parser struct {
	matcher language.Matcher
	tags    []language.Tag
}

// NewParser creates a parser supporting the given locales. The first tag is
// the fallback.
func NewParser(supported ...language.Tag) *Parser {
	if len(supported) == 0 {
		supported = []language.Tag{language.English, language.German}
	}
	return &Parser{
		matcher: language.NewMatcher(supported),
		tags:    supported,
	}
}

// Parse splits raw into terms and filters. acceptLang is the raw
// Accept-Language header value.
func (p *Parser) Parse(raw, acceptLang string, mode Mode, page int) (*ParsedQuery, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number %d", page)
	}

	q := &ParsedQuery{Mode: mode, Page: page}
	var explicitLang string

	for _, token := range tokenize(raw) {
		if token.Phrase {
			q.Terms = append(q.Terms, token)
			continue
		}
		switch {
		case strings.HasPrefix(token.Text, "site:"):
			q.Site = strings.ToLower(strings.TrimPrefix(token.Text, "site:"))
		case strings.HasPrefix(token.Text, "lang:"):
			explicitLang = strings.TrimPrefix(token.Text, "lang:")
		case strings.HasPrefix(token.Text, "language:"):
			explicitLang = strings.TrimPrefix(token.Text, "language:")
		default:
			q.Terms = append(q.Terms, token)
		}
	}

	q.Lang = p.resolveLang(explicitLang, acceptLang)
	return q, nil
}

// resolveLang prefers an explicit lang: filter, then the Accept-Language
// header, then the parser's fallback locale.
func (p *Parser) resolveLang(explicit, acceptLang string) string {
	if explicit != "" {
		// An explicit filter is honored verbatim; engines may cover
		// languages the UI has no locale for.
		if tag, err := language.Parse(explicit); err == nil {
			return baseOf(tag)
		}
	}
	if acceptLang != "" {
		if tag, _, err := language.ParseAcceptLanguage(acceptLang); err == nil && len(tag) > 0 {
			matched, _, _ := p.matcher.Match(tag...)
			return baseOf(matched)
		}
	}
	return baseOf(p.tags[0])
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// tokenize splits raw into whitespace-separated words and quoted phrases. An
// unterminated quote runs to the end of the input.
func tokenize(raw string) []Term {
	var terms []Term
	var current strings.Builder
	inPhrase := false

	flush := func(phrase bool) {
		if current.Len() == 0 {
			return
		}
		terms = append(terms, Term{Text: current.String(), Phrase: phrase})
		current.Reset()
	}

	for _, r := range raw {
		switch {
		case r == '"':
			flush(inPhrase)
			inPhrase = !inPhrase
		case !inPhrase && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush(false)
		default:
			current.WriteRune(r)
		}
	}
	flush(inPhrase)

	return terms
}
