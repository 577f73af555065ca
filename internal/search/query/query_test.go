package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	tests := []struct {
		name       string
		raw        string
		acceptLang string
		want       ParsedQuery
		wantStr    string
	}{
		{
			name:    "plain words",
			raw:     "hello world",
			want:    ParsedQuery{Terms: []Term{{Text: "hello"}, {Text: "world"}}, Lang: "en"},
			wantStr: "hello world",
		},
		{
			name:    "quoted phrase",
			raw:     `find "exact phrase" here`,
			want:    ParsedQuery{Terms: []Term{{Text: "find"}, {Text: "exact phrase", Phrase: true}, {Text: "here"}}, Lang: "en"},
			wantStr: `find "exact phrase" here`,
		},
		{
			name:    "unterminated phrase runs to end",
			raw:     `broken "tail end`,
			want:    ParsedQuery{Terms: []Term{{Text: "broken"}, {Text: "tail end", Phrase: true}}, Lang: "en"},
			wantStr: `broken "tail end"`,
		},
		{
			name:    "site filter",
			raw:     "golang site:Example.COM",
			want:    ParsedQuery{Terms: []Term{{Text: "golang"}}, Site: "example.com", Lang: "en"},
			wantStr: "golang site:example.com",
		},
		{
			name:    "explicit lang filter",
			raw:     "katzen lang:de",
			want:    ParsedQuery{Terms: []Term{{Text: "katzen"}}, Lang: "de"},
			wantStr: "katzen",
		},
		{
			name:    "explicit language filter outside locales",
			raw:     "chats language:fr",
			want:    ParsedQuery{Terms: []Term{{Text: "chats"}}, Lang: "fr"},
			wantStr: "chats",
		},
		{
			name:       "accept-language header",
			raw:        "katzen",
			acceptLang: "de-DE,de;q=0.9,en;q=0.6",
			want:       ParsedQuery{Terms: []Term{{Text: "katzen"}}, Lang: "de"},
			wantStr:    "katzen",
		},
		{
			name:       "garbage accept-language falls back",
			raw:        "hello",
			acceptLang: ";;;",
			want:       ParsedQuery{Terms: []Term{{Text: "hello"}}, Lang: "en"},
			wantStr:    "hello",
		},
		{
			name:    "whitespace collapsing",
			raw:     "  a \t b  ",
			want:    ParsedQuery{Terms: []Term{{Text: "a"}, {Text: "b"}}, Lang: "en"},
			wantStr: "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parser.Parse(tt.raw, tt.acceptLang, ModeWeb, 1)
			require.NoError(t, err)

			assert.Equal(t, tt.want.Terms, got.Terms)
			assert.Equal(t, tt.want.Site, got.Site)
			assert.Equal(t, tt.want.Lang, got.Lang)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestParse_InvalidPage(t *testing.T) {
	t.Parallel()

	_, err := NewParser().Parse("x", "", ModeWeb, 0)
	require.Error(t, err)
}

func TestRequiredExtensions(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	q, err := parser.Parse(`"a phrase" site:example.com`, "", ModeWeb, 2)
	require.NoError(t, err)

	ext := q.RequiredExtensions()
	assert.True(t, ext.Contains(ExtQuotes))
	assert.True(t, ext.Contains(ExtSite))
	assert.True(t, ext.Contains(ExtPaging))

	plain, err := parser.Parse("hello", "", ModeWeb, 1)
	require.NoError(t, err)
	assert.Equal(t, Extensions(0), plain.RequiredExtensions())

	assert.True(t, (ExtQuotes | ExtSite | ExtPaging).Contains(ext))
	assert.False(t, ExtQuotes.Contains(ExtQuotes|ExtSite))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode("images")
	require.NoError(t, err)
	assert.Equal(t, ModeImages, mode)

	_, err = ParseMode("videos")
	require.Error(t, err)
}
