package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: dump.xml.bz2
workers: 4
offsets: byte
transparent_tags: [span, div]
tag_scanner: treesitter
log_level: debug
`), 0o644))

	t.Setenv("SIFT_WORKERS", "8")
	t.Setenv("SIFT_DB", "pages.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dump.xml.bz2", cfg.Input)
	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, OffsetsByte, cfg.Offsets)
	assert.Equal(t, []string{"span", "div"}, cfg.TransparentTags)
	assert.Equal(t, ScannerTreeSitter, cfg.TagScanner)
	assert.Equal(t, "pages.db", cfg.DB)
	assert.Equal(t, 10000, cfg.ProgressEvery)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv("SIFT_WORKERS", "many")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"upper-case offsets", func(c *Config) { c.Offsets = " BYTE " }, true},
		{"unknown offsets", func(c *Config) { c.Offsets = "utf16" }, false},
		{"unknown scanner", func(c *Config) { c.TagScanner = "regex" }, false},
		{"negative workers", func(c *Config) { c.Workers = -1 }, false},
		{"negative progress", func(c *Config) { c.ProgressEvery = -5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
