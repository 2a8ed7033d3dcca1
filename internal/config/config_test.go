package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"."}, cfg.Roots)
	assert.Greater(t, cfg.Workers, 0)
	assert.Contains(t, cfg.Exclude, "**/.git/**")
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, cfg.Roots)
}

func TestLoad_KDL(t *testing.T) {
	dir := t.TempDir()
	doc := `package "TestApp"
roots {
    root "./src"
}
entrypoints {
    pattern "Program"
}
workers 8
exclude "**/vendor/**" "**/*.gen.ax"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "TestApp", cfg.Package)
	assert.Equal(t, []string{filepath.Clean(filepath.Join(dir, "src"))}, cfg.Roots)
	assert.Equal(t, []string{"Program"}, cfg.EntryPatterns)
	assert.Equal(t, 8, cfg.Workers)
	assert.Contains(t, cfg.Exclude, "**/vendor/**")
	assert.Contains(t, cfg.Exclude, "**/*.gen.ax")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Package: "App", Roots: []string{"."}, Workers: 0}
	require.NoError(t, cfg.Validate())
	assert.Greater(t, cfg.Workers, 0)
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Apply(Overrides{
		Root:          "/abs/root",
		EntryPatterns: []string{"Program"},
		Exclude:       []string{"**/*.gen.ax"},
		Workers:       4,
	})
	assert.Equal(t, []string{"/abs/root"}, cfg.Roots)
	assert.Equal(t, []string{"Program"}, cfg.EntryPatterns)
	assert.Contains(t, cfg.Exclude, "**/*.gen.ax")
	assert.Equal(t, 4, cfg.Workers)
}
