package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	OffsetsRune = "rune"
	OffsetsByte = "byte"

	ScannerNative     = "native"
	ScannerTreeSitter = "treesitter"
)

type Config struct {
	Input           string   `yaml:"input"`  // dump path, "-" for stdin
	Output          string   `yaml:"output"` // JSON lines path, "-" for stdout
	Workers         int      `yaml:"workers"`
	Offsets         string   `yaml:"offsets"`
	TransparentTags []string `yaml:"transparent_tags"`
	TagScanner      string   `yaml:"tag_scanner"`
	DB              string   `yaml:"db"`       // optional SQLite sink
	IDsFile         string   `yaml:"ids_file"` // optional CSV allow list
	LogLevel        string   `yaml:"log_level"`
	ProgressEvery   int      `yaml:"progress_every"`
}

func Default() *Config {
	return &Config{
		Input:         "-",
		Output:        "-",
		Offsets:       OffsetsRune,
		TagScanner:    ScannerNative,
		LogLevel:      "info",
		ProgressEvery: 10000,
	}
}

// LoadConfig reads path on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("SIFT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SIFT_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("SIFT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SIFT_OFFSETS"); v != "" {
		cfg.Offsets = v
	}
	if v := os.Getenv("SIFT_DB"); v != "" {
		cfg.DB = v
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	c.Offsets = strings.ToLower(strings.TrimSpace(c.Offsets))
	c.TagScanner = strings.ToLower(strings.TrimSpace(c.TagScanner))

	switch c.Offsets {
	case OffsetsRune, OffsetsByte:
	default:
		return fmt.Errorf("offsets must be %q or %q, got %q", OffsetsRune, OffsetsByte, c.Offsets)
	}
	switch c.TagScanner {
	case ScannerNative, ScannerTreeSitter:
	default:
		return fmt.Errorf("tag_scanner must be %q or %q, got %q", ScannerNative, ScannerTreeSitter, c.TagScanner)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must not be negative, got %d", c.ProgressEvery)
	}
	return nil
}
