// Package config provides configuration management for pathtemplate using
// Viper for loading from files, environment variables, and command-line flags.
//
// The configuration file (.pathtemplate.yml by default) names reusable
// templates, default binding sources, the output format, logging options and
// the file patterns watched by the watch command. Environment variables with
// the PATHTEMPLATE_ prefix override file values.
package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/conneroisu/pathtemplate/pkg/pathtemplate"
)

// Default values applied by Load when a key is unset.
const (
	DefaultOutputFormat = "text"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultDebounce     = 200 * time.Millisecond
)

// DefaultWatchPatterns are the files that trigger a re-render in watch mode.
var DefaultWatchPatterns = []string{"**/*.yml", "**/*.yaml", "**/*.json"}

// OutputFormats lists the supported values of output.format.
var OutputFormats = []string{"text", "json", "yaml"}

var templateNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

type Config struct {
	Templates map[string]string `yaml:"templates"`
	Bindings  BindingsConfig    `yaml:"bindings"`
	Output    OutputConfig      `yaml:"output"`
	Log       LogConfig         `yaml:"log"`
	Watch     WatchConfig       `yaml:"watch"`
}

type BindingsConfig struct {
	Files  []string          `yaml:"files"`
	Values map[string]string `yaml:"values"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Patterns []string      `yaml:"patterns"`
}

// Load reads the configuration currently held by viper, applies defaults and
// validates the result.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Slices set through viper.Set or env vars are not always decoded.
	if viper.IsSet("bindings.files") && len(config.Bindings.Files) == 0 {
		config.Bindings.Files = viper.GetStringSlice("bindings.files")
	}
	if viper.IsSet("watch.patterns") && len(config.Watch.Patterns) == 0 {
		config.Watch.Patterns = viper.GetStringSlice("watch.patterns")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Templates == nil {
		config.Templates = make(map[string]string)
	}
	if config.Bindings.Values == nil {
		config.Bindings.Values = make(map[string]string)
	}
	if config.Output.Format == "" {
		config.Output.Format = DefaultOutputFormat
	}
	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = DefaultDebounce
	}
	if len(config.Watch.Patterns) == 0 {
		config.Watch.Patterns = append([]string(nil), DefaultWatchPatterns...)
	}
}

// TemplateNames returns the configured template names in sorted order.
func (c *Config) TemplateNames() []string {
	names := make([]string, 0, len(c.Templates))
	for name := range c.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateConfig validates configuration values
func validateConfig(config *Config) error {
	if err := validateTemplates(config.Templates); err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	if err := validateBindingsConfig(&config.Bindings); err != nil {
		return fmt.Errorf("bindings config: %w", err)
	}

	if !isOneOf(config.Output.Format, OutputFormats) {
		return fmt.Errorf("output config: unsupported format %q (supported: %s)",
			config.Output.Format, strings.Join(OutputFormats, ", "))
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	return nil
}

// validateTemplates checks names only. Template bodies are compiled by the
// registry so that one bad template does not hide the others.
func validateTemplates(templates map[string]string) error {
	for name, source := range templates {
		if !templateNamePattern.MatchString(name) {
			return fmt.Errorf("invalid template name %q", name)
		}
		if source == "" {
			return fmt.Errorf("template %q is empty", name)
		}
	}
	return nil
}

func validateBindingsConfig(config *BindingsConfig) error {
	for _, file := range config.Files {
		if err := validatePath(file); err != nil {
			return fmt.Errorf("invalid bindings file '%s': %w", file, err)
		}
	}

	for key := range config.Values {
		if key == "" {
			return fmt.Errorf("empty binding name")
		}
		if strings.Contains(key, pathtemplate.ModifierMarker) {
			return fmt.Errorf("binding %q must not carry a modifier", key)
		}
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported level %q", config.Level)
	}

	if !isOneOf(config.Format, []string{"text", "json"}) {
		return fmt.Errorf("unsupported format %q", config.Format)
	}

	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	if config.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", config.Debounce)
	}

	for _, pattern := range config.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}

	return nil
}

// validatePath rejects empty paths and paths carrying control characters.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path")
	}

	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains control characters")
	}

	return nil
}

func isOneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
