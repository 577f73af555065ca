package server

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/searchengine/internal/search/query"
)

func highlightQuery(words ...string) *query.ParsedQuery {
	q := &query.ParsedQuery{Mode: query.ModeWeb, Page: 1}
	for _, w := range words {
		q.Terms = append(q.Terms, query.Term{Text: w})
	}
	return q
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		words []string
		text  string
		want  template.HTML
	}{
		{
			name:  "case insensitive",
			words: []string{"world"},
			text:  "Hello World!",
			want:  "Hello <b>World</b>!",
		},
		{
			name:  "inside a word",
			words: []string{"middle"},
			text:  "inthemiddleofaword!",
			want:  "inthe<b>middle</b>ofaword!",
		},
		{
			name:  "every occurrence",
			words: []string{"mult"},
			text:  "a mult b mult c mult d",
			want:  "a <b>mult</b> b <b>mult</b> c <b>mult</b> d",
		},
		{
			name:  "no match",
			words: []string{"absent"},
			text:  "nothing here",
			want:  "nothing here",
		},
		{
			name:  "overlapping words merge",
			words: []string{"over", "verla"},
			text:  "overlap",
			want:  "<b>overla</b>p",
		},
		{
			name:  "html is escaped",
			words: []string{"bold"},
			text:  "<i>bold</i>",
			want:  "&lt;i&gt;<b>bold</b>&lt;/i&gt;",
		},
		{
			// U+023A lowercases to U+2C65, which is one byte longer.
			name:  "lowercasing grows a rune",
			words: []string{"x"},
			text:  "Ⱥx",
			want:  "Ⱥ<b>x</b>",
		},
		{
			// The Kelvin sign U+212A lowercases to the 1-byte "k".
			name:  "lowercasing shrinks a rune",
			words: []string{"b"},
			text:  "KKb",
			want:  "KK<b>b</b>",
		},
		{
			name:  "match spans a case-folded rune",
			words: []string{"k"},
			text:  "5 K",
			want:  "5 <b>K</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, highlight(tt.text, highlightQuery(tt.words...)))
		})
	}
}
