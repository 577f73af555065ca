package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
listen: ":9090"
blocklist_path: /srv/domains.txt
engine_timeout: 2500ms
languages: [en, fr]
`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "/srv/domains.txt", cfg.BlocklistPath)
	assert.Equal(t, 2500*time.Millisecond, cfg.EngineTimeout.Std())
	assert.Equal(t, []string{"en", "fr"}, cfg.Languages)

	assert.Equal(t, "metrics.db", cfg.MetricsDSN, "untouched fields keep their defaults")
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "listen: [unclosed"},
		{"bad duration", "engine_timeout: soon"},
		{"empty listen", `listen: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
