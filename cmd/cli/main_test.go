package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"help"})

	require.NoError(t, err, "run() should return a nil error when only help was requested")
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"build", "--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ManifestError(t *testing.T) {
	t.Parallel()

	invalidHCL := `
		target "styles" {
			uses = "command"
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "build.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"build", "-m", filePath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load manifest")
}
