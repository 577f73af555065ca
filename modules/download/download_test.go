package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/searchengine/internal/registry"
)

func TestFetchToFile_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("htmx.min.js contents"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "htmx.min.js")
	err := FetchToFile(context.Background(), srv.URL, "", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "htmx.min.js contents", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetchToFile_ErrorStatusLeavesNoFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "htmx.min.js")
	err := FetchToFile(context.Background(), srv.URL, "", dest)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStep_RequiresSingleOutput(t *testing.T) {
	t.Parallel()

	err := onRunDownload(context.Background(), &registry.StepContext{Target: "htmx"}, &Input{URL: "http://example.invalid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one output")
}
