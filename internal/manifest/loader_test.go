package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "build.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_LocalsInterpolation(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
locals {
  searxng_version = "2025.7.1"
  wheel           = "searxng-${local.searxng_version}-py3-none-any.whl"
}

target "wheel" {
  uses    = "command"
  outputs = ["dist/${local.wheel}"]

  arguments {
    argv = ["./manage", "py.build"]
  }
}

target "build" {
  depends_on = ["wheel"]
}
`)

	p, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, p.Targets, 2)
	assert.Equal(t, []string{"wheel", "build"}, p.Order)

	wheel := p.Targets["wheel"]
	require.NotNil(t, wheel)
	assert.Equal(t, "command", wheel.Uses)
	assert.Equal(t, []string{"dist/searxng-2025.7.1-py3-none-any.whl"}, wheel.Outputs)
	require.NotNil(t, wheel.Arguments)

	build := p.Targets["build"]
	require.NotNil(t, build)
	assert.Empty(t, build.Uses)
	assert.Equal(t, []string{"wheel"}, build.DependsOn)

	assert.Equal(t, cty.StringVal("2025.7.1"), p.Locals["searxng_version"])
}

func TestLoad_LocalsOutOfOrder(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
locals {
  greeting = "${local.name}, hello"
}
locals {
  name = "world"
}
`)

	p, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("world, hello"), p.Locals["greeting"])
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{
			name: "duplicate target",
			manifest: `
target "a" {}
target "a" {}
`,
			wantErr: `duplicate target "a"`,
		},
		{
			name: "arguments without uses",
			manifest: `
target "a" {
  arguments {
    url = "https://example.com"
  }
}
`,
			wantErr: "no 'uses' step type",
		},
		{
			name: "cyclic locals",
			manifest: `
locals {
  a = local.b
  b = local.a
}
`,
			wantErr: "unresolvable locals",
		},
		{
			name:     "syntax error",
			manifest: `target "a" {`,
			wantErr:  "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeManifest(t, tt.manifest)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`target "a" {}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`target "b" { depends_on = ["a"] }`), 0o600))

	p, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, p.Targets, 2)
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}
