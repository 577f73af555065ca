package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/searchengine/internal/app"
)

func TestParse_Build(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"build", "-m", "pipeline.hcl", "-workers", "2", "htmx", "domains"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, app.CmdBuild, cfg.Command)
	assert.Equal(t, "pipeline.hcl", cfg.ManifestPath)
	assert.Equal(t, []string{"htmx", "domains"}, cfg.Targets)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParse_ManifestFlagAliases(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, _, err := Parse([]string{"build", "-manifest", "long.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "long.hcl", cfg.ManifestPath)

	cfg, _, err = Parse([]string{"build", "-manifest", "long.hcl", "-m", "short.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "short.hcl", cfg.ManifestPath, "both names bind the same flag, last one wins")
}

func TestParse_BuildDefaults(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"build"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "build.hcl", cfg.ManifestPath)
	assert.Empty(t, cfg.Targets)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestParse_Serve(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"serve", "-config", "server.yaml", "-listen", ":9000", "-log-format", "json"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, app.CmdServe, cfg.Command)
	assert.Equal(t, "server.yaml", cfg.ConfigPath)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"bad log format", []string{"build", "-log-format", "xml"}},
		{"bad log level", []string{"build", "-log-level", "verbose"}},
		{"bad workers", []string{"build", "-workers", "0"}},
		{"serve with targets", []string{"serve", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			_, _, err := Parse(tt.args, &out)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"help"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")

	out.Reset()
	_, exit, err = Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
}
