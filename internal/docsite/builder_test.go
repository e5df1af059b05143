package docsite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestBuildRendersMarkdownTree(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	output := filepath.Join(dir, "build")

	writeFile(t, filepath.Join(source, "index.md"), "# Welcome\n\nThe DashLab dashboard.\n")
	writeFile(t, filepath.Join(source, "setup", "local.md"), "# Local Setup\n\nRun `labctl up dev`.\n")
	writeFile(t, filepath.Join(source, "style.css"), "body { margin: 0; }\n")

	builder := New(source, output, "DashLab")
	require.NoError(t, builder.Build())

	index, err := os.ReadFile(filepath.Join(output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<h1>Welcome</h1>")
	assert.Contains(t, string(index), "<title>Welcome - DashLab</title>")

	local, err := os.ReadFile(filepath.Join(output, "setup", "local.html"))
	require.NoError(t, err)
	assert.Contains(t, string(local), "<h1>Local Setup</h1>")
	assert.Contains(t, string(local), "<code>labctl up dev</code>")

	css, err := os.ReadFile(filepath.Join(output, "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body { margin: 0; }\n", string(css))
}

func TestBuildSubstitutesImageTag(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	output := filepath.Join(dir, "build")

	writeFile(t, filepath.Join(source, "index.md"), "# Release\n\nDeployed image: |image_tag|\n")

	t.Setenv("IMAGE_TAG", "v1.4.2")

	builder := New(source, output, "DashLab")
	require.NoError(t, builder.Build())

	index, err := os.ReadFile(filepath.Join(output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Deployed image: v1.4.2")
	assert.Contains(t, string(index), "image tag: v1.4.2")
}

func TestBuildDefaultsImageTagToUnknown(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	output := filepath.Join(dir, "build")

	writeFile(t, filepath.Join(source, "index.md"), "tag: |image_tag|\n")

	t.Setenv("IMAGE_TAG", "")

	builder := New(source, output, "DashLab")
	require.NoError(t, builder.Build())

	index, err := os.ReadFile(filepath.Join(output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "tag: unknown")
}

func TestRebuildLeavesNoStaleFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	output := filepath.Join(dir, "build")

	writeFile(t, filepath.Join(source, "index.md"), "# One\n")
	writeFile(t, filepath.Join(source, "old.md"), "# Old\n")

	builder := New(source, output, "DashLab")
	require.NoError(t, builder.Build())
	require.FileExists(t, filepath.Join(output, "old.html"))

	// Remove a source page; a rebuild must not serve its old output.
	require.NoError(t, os.Remove(filepath.Join(source, "old.md")))
	require.NoError(t, builder.Build())

	assert.NoFileExists(t, filepath.Join(output, "old.html"))
	assert.FileExists(t, filepath.Join(output, "index.html"))
}

func TestBuildMissingSource(t *testing.T) {
	builder := New(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "build"), "DashLab")
	err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs source directory not found")
}
