package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with priority-based overrides.
type Loader struct {
	searchPaths []string
}

// NewLoader creates a loader with the default search paths, lowest
// priority first.
func NewLoader() *Loader {
	return &Loader{
		searchPaths: defaultSearchPaths(),
	}
}

// WithPaths replaces the search paths entirely.
func (l *Loader) WithPaths(paths ...string) *Loader {
	l.searchPaths = paths
	return l
}

// Load builds the effective configuration: defaults, then each search
// path that exists (later paths win), then environment variables on
// top. The result is validated before it is returned.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range l.searchPaths {
		expanded := expandPath(path)
		if _, err := os.Stat(expanded); err != nil {
			continue
		}
		if err := mergeFile(cfg, expanded); err != nil {
			return nil, fmt.Errorf("loading %s: %w", expanded, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile loads a specific configuration file on top of the defaults,
// skipping the search paths. Environment overrides still apply.
func (l *Loader) LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeFile(cfg, expandPath(path)); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal into the existing struct so absent keys keep their
	// current values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}

func defaultSearchPaths() []string {
	return []string{
		"/etc/taskhealth/config.yaml",
		"~/.config/taskhealth/config.yaml",
		".taskhealth.yaml",
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
