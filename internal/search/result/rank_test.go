package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_AccumulatesAgreementAcrossEngines(t *testing.T) {
	t.Parallel()

	byEngine := map[string][]Result{
		"alpha": {
			{Title: "Go", URL: "https://go.dev/", Text: "short"},
			{Title: "Other", URL: "https://example.com/other"},
		},
		"beta": {
			{Title: "Go", URL: "http://go.dev", Text: "a much longer snippet"},
		},
	}
	weights := map[string]float64{"alpha": 1.0, "beta": 1.3}

	rated := Merge(byEngine, weights)
	require.Len(t, rated, 2)

	top := rated[0]
	assert.Equal(t, "Go", top.Title)
	assert.Equal(t, []string{"alpha", "beta"}, top.Engines)
	assert.InDelta(t, 2.3, top.Score, 1e-9)
	assert.Equal(t, "a much longer snippet", top.Text, "longest snippet wins")

	assert.Equal(t, "Other", rated[1].Title)
	assert.Less(t, rated[1].Score, top.Score)
}

func TestMerge_PositionDecay(t *testing.T) {
	t.Parallel()

	rated := Merge(map[string][]Result{
		"alpha": {
			{Title: "first", URL: "https://a.example/1"},
			{Title: "second", URL: "https://a.example/2"},
		},
	}, map[string]float64{"alpha": 1.0})

	require.Len(t, rated, 2)
	assert.Equal(t, "first", rated[0].Title)
	assert.Greater(t, rated[0].Score, rated[1].Score)
}

func TestMerge_DefaultWeight(t *testing.T) {
	t.Parallel()

	rated := Merge(map[string][]Result{
		"unweighted": {{Title: "x", URL: "https://x.example/"}},
	}, nil)

	require.Len(t, rated, 1)
	assert.InDelta(t, 1.0, rated[0].Score, 1e-9)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	rated := []Rated{
		{Result: Result{Title: "ok", URL: "https://good.example/"}},
		{Result: Result{Title: "ad", URL: "https://ads.example.com/x"}},
	}

	kept := Filter(rated, func(host string) bool { return host == "ads.example.com" })
	require.Len(t, kept, 1)
	assert.Equal(t, "ok", kept[0].Title)

	assert.Len(t, Filter(rated, nil), 2)
}

func TestKeyNormalization(t *testing.T) {
	t.Parallel()

	assert.Equal(t, key("https://Go.dev/"), key("http://go.dev"))
	assert.NotEqual(t, key("https://go.dev/a"), key("https://go.dev/b"))
	assert.Equal(t, key("https://go.dev/a?q=1"), key("http://go.dev/a?q=1"))
}
