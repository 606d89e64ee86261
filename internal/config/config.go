// Package config carries the settings for a merge run and for serve mode.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// DefaultFile is probed in the working directory when no config file is
// named explicitly.
const DefaultFile = "memmerge.yml"

type Config struct {
	// Merge run
	SourceDir   string
	OutputDir   string
	OutputFile  string
	HTMLSummary string

	// Serve mode
	Port           string
	APIKey         string
	MaxUploadBytes int64
}

// fileConfig is the YAML shape of a config file. Only settings that make
// sense as durable defaults are accepted; the output file name is always
// given per run.
type fileConfig struct {
	SourceDir      string `yaml:"source_dir"`
	OutputDir      string `yaml:"output_dir"`
	HTMLSummary    string `yaml:"html_summary"`
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Default builds a config from environment variables and built-in fallbacks.
func Default() Config {
	cfg := Config{
		SourceDir: ".",

		Port:           envOr("MEMMERGE_PORT", "8090"),
		APIKey:         os.Getenv("MEMMERGE_API_KEY"),
		MaxUploadBytes: envInt64("MEMMERGE_MAX_UPLOAD_BYTES", 52428800), // 50MB
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

// LoadFile overlays settings from a YAML file onto c. A missing file is an
// error only when the path was named explicitly; the probed default file is
// optional.
func (c *Config) LoadFile(fsys billy.Filesystem, path string, explicit bool) error {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.SourceDir != "" {
		c.SourceDir = fc.SourceDir
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.HTMLSummary != "" {
		c.HTMLSummary = fc.HTMLSummary
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.MaxUploadBytes > 0 {
		c.MaxUploadBytes = fc.MaxUploadBytes
	}
	return nil
}

// Normalize applies the directory fallbacks: trailing slashes are dropped
// and the output directory defaults to the source directory.
func (c *Config) Normalize() {
	if c.SourceDir == "" {
		c.SourceDir = "."
	}
	c.SourceDir = filepath.Clean(c.SourceDir)
	if c.OutputDir == "" {
		c.OutputDir = c.SourceDir
	}
	c.OutputDir = filepath.Clean(c.OutputDir)
}

// Validate checks the parts of the config a merge run depends on. Both
// directories must already exist; the output directory is never created.
func (c Config) Validate(fsys billy.Filesystem) error {
	if c.OutputFile == "" {
		return fmt.Errorf("output file name is required")
	}
	if err := checkDir(fsys, c.SourceDir); err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	if err := checkDir(fsys, c.OutputDir); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	return nil
}

// OutputPath is where the merged report lands.
func (c Config) OutputPath(fsys billy.Filesystem) string {
	return fsys.Join(c.OutputDir, c.OutputFile)
}

func checkDir(fsys billy.Filesystem, dir string) error {
	info, err := fsys.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s does not exist", dir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
