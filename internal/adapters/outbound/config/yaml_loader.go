package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/a11yfix/a11yfix/internal/domain"
)

// FileName is the config file looked up in a directory.
const FileName = ".a11yfix.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .a11yfix.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads configuration from path. A directory (or "") is searched for
// .a11yfix.yaml and yields DefaultConfig when none exists; an explicit file
// must exist.
func (l *YAMLLoader) Load(path string) (domain.Config, error) {
	file, explicit, err := resolve(path)
	if err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, fmt.Errorf("%w: reading config: %w", domain.ErrIOFailure, err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("%w: parsing %s: %w", domain.ErrMalformedInput, filepath.Base(file), err)
	}

	// Validate the raw input so typos are reported against what the user wrote.
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("%w: invalid %s: %w", domain.ErrMalformedInput, filepath.Base(file), err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

func resolve(path string) (file string, explicit bool, err error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(path, FileName), false, nil
	case err == nil:
		return path, true, nil
	case errors.Is(err, os.ErrNotExist):
		return "", true, fmt.Errorf("%w: config file %s does not exist", domain.ErrIOFailure, path)
	default:
		return "", true, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
	}
}

// mergeConfig overlays explicit values on top of defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.Config) domain.Config {
	result := base

	// Explicit extensions replace the defaults entirely.
	if len(override.Extensions) > 0 {
		result.Extensions = override.Extensions
	}
	if len(override.ExcludePaths) > 0 {
		result.ExcludePaths = override.ExcludePaths
	}
	if override.MaxFileBytes > 0 {
		result.MaxFileBytes = override.MaxFileBytes
	}

	b := override.Browser
	if b.Headless != nil {
		result.Browser.Headless = b.Headless
	}
	if b.ExecPath != "" {
		result.Browser.ExecPath = b.ExecPath
	}
	if b.TimeoutSeconds > 0 {
		result.Browser.TimeoutSeconds = b.TimeoutSeconds
	}
	if b.ViewportWidth > 0 {
		result.Browser.ViewportWidth = b.ViewportWidth
	}
	if b.ViewportHeight > 0 {
		result.Browser.ViewportHeight = b.ViewportHeight
	}

	// The checker has no defaults.
	result.Checker = override.Checker

	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		result.Log.Format = override.Log.Format
	}

	return result
}
