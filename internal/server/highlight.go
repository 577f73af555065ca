package server

import (
	"html/template"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vk/searchengine/internal/search/query"
)

// lowerOffsets lowercases s rune by rune and returns the lowered string
// together with a byte-offset map back into s. Lowercasing can change a
// rune's encoded length (U+212A "K" lowers to the 1-byte "k"), so offsets
// found in the lowered string must not be used to slice s directly;
// offsets[i] is the position in s corresponding to position i in the
// lowered string, for every i on a lowered rune boundary.
func lowerOffsets(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(s))
	return b.String(), offsets
}

// highlight wraps every occurrence of a query word in the text with <b>
// tags. Matching is case-insensitive and works inside words. The rest of
// the text is HTML-escaped.
func highlight(text string, q *query.ParsedQuery) template.HTML {
	if q == nil {
		return template.HTML(template.HTMLEscapeString(text))
	}

	lower, orig := lowerOffsets(text)
	var spans [][2]int
	for _, word := range q.Words() {
		w := strings.ToLower(word)
		if w == "" {
			continue
		}
		for start := 0; ; {
			i := strings.Index(lower[start:], w)
			if i < 0 {
				break
			}
			spans = append(spans, [2]int{start + i, start + i + len(w)})
			start += i + len(w)
		}
	}
	if len(spans) == 0 {
		return template.HTML(template.HTMLEscapeString(text))
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s[0] <= last[1] {
			if s[1] > last[1] {
				last[1] = s[1]
			}
			continue
		}
		merged = append(merged, s)
	}

	// Spans are offsets into the lowered string; map them back before
	// slicing the original text.
	var b strings.Builder
	pos := 0
	for _, s := range merged {
		b.WriteString(template.HTMLEscapeString(text[orig[pos]:orig[s[0]]]))
		b.WriteString("<b>")
		b.WriteString(template.HTMLEscapeString(text[orig[s[0]]:orig[s[1]]]))
		b.WriteString("</b>")
		pos = s[1]
	}
	b.WriteString(template.HTMLEscapeString(text[orig[pos]:]))

	return template.HTML(b.String())
}
