package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultExtensions are the markup-bearing source file types searched for fixes.
var DefaultExtensions = []string{
	".html", ".htm", ".jsx", ".tsx", ".js", ".ts", ".vue", ".svelte", ".astro",
	".php", ".erb", ".hbs", ".njk", ".liquid", ".twig", ".cshtml", ".tmpl",
}

// ValidLogFormats enumerates accepted log encodings.
var ValidLogFormats = []string{"console", "json"}

// ValidLogLevels enumerates accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds tool configuration loaded from .a11yfix.yaml.
type Config struct {
	Extensions   []string      `yaml:"extensions"     json:"extensions,omitempty"`
	ExcludePaths []string      `yaml:"exclude_paths"  json:"exclude_paths,omitempty"`
	MaxFileBytes int64         `yaml:"max_file_bytes" json:"max_file_bytes,omitempty"`
	Browser      BrowserConfig `yaml:"browser"        json:"browser"`
	Checker      CheckerConfig `yaml:"checker"        json:"checker"`
	Log          LogConfig     `yaml:"log"            json:"log"`
}

// BrowserConfig controls the headless browser hosting the live document.
type BrowserConfig struct {
	Headless       *bool  `yaml:"headless,omitempty"        json:"headless,omitempty"`
	ExecPath       string `yaml:"exec_path,omitempty"       json:"exec_path,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty"`
	ViewportWidth  int    `yaml:"viewport_width,omitempty"  json:"viewport_width,omitempty"`
	ViewportHeight int    `yaml:"viewport_height,omitempty" json:"viewport_height,omitempty"`
}

// IsHeadless defaults to true.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// Timeout bounds each browser action.
func (b BrowserConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// CheckerConfig locates the accessibility rule engine script.
type CheckerConfig struct {
	Script    string   `yaml:"script,omitempty"     json:"script,omitempty"`
	ScriptURL string   `yaml:"script_url,omitempty" json:"script_url,omitempty"`
	Rules     []string `yaml:"rules,omitempty"      json:"rules,omitempty"`
}

// LogConfig selects log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"  json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Extensions:   append([]string{}, DefaultExtensions...),
		MaxFileBytes: 2 << 20,
		Browser: BrowserConfig{
			TimeoutSeconds: 30,
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Validate checks user-supplied values before they are merged over defaults.
func (c Config) Validate() error {
	var errs []string

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("extension %q must start with '.'", ext))
		}
	}
	if c.MaxFileBytes < 0 {
		errs = append(errs, fmt.Sprintf("max_file_bytes must be >= 0, got %d", c.MaxFileBytes))
	}
	if c.Browser.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("browser.timeout_seconds must be >= 0, got %d", c.Browser.TimeoutSeconds))
	}
	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		errs = append(errs, "browser viewport dimensions must be >= 0")
	}
	if c.Log.Level != "" && !contains(ValidLogLevels, c.Log.Level) {
		errs = append(errs, fmt.Sprintf("unknown log.level %q (valid: %s)", c.Log.Level, strings.Join(ValidLogLevels, ", ")))
	}
	if c.Log.Format != "" && !contains(ValidLogFormats, c.Log.Format) {
		errs = append(errs, fmt.Sprintf("unknown log.format %q (valid: %s)", c.Log.Format, strings.Join(ValidLogFormats, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// ScanOptions derives source enumeration filters from the config.
func (c Config) ScanOptions() ScanOptions {
	return ScanOptions{
		Extensions:   c.Extensions,
		ExcludePaths: c.ExcludePaths,
		MaxFileBytes: c.MaxFileBytes,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
