// =============================================================================
// txtmerge - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. Every
// setting has a default, so the tool runs without a config file at all.
//
// CONFIGURATION FILE (config.yaml):
//   marker: '"15"'
//   fallback_encoding: ISO-8859-1
//   default_mode: append
//   log_level: info
//   report:
//     dir: ./reports
//     file_name_format: "merge_{date}_{uuid}"
//     xlsx: false
//     text: false
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/txtmerge/internal/decoder"
	"github.com/ginjaninja78/txtmerge/internal/types"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// Marker is the quoted record-type token that identifies data records.
	// Default: `"15"`
	Marker string `yaml:"marker"`

	// FallbackEncoding is used when a file is not valid UTF-8.
	// Valid values: "ISO-8859-1", "ISO-8859-15", "Windows-1252"
	// Default: "ISO-8859-1"
	FallbackEncoding string `yaml:"fallback_encoding"`

	// DefaultMode is the concatenation mode used when --mode is not given.
	// Valid values: "append", "join"
	// Default: "append"
	DefaultMode string `yaml:"default_mode"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// Report controls the optional merge reports.
	Report ReportConfig `yaml:"report"`
}

// ReportConfig holds the settings for merge reports.
type ReportConfig struct {
	// Dir is where report files are written.
	// Default: "./reports"
	Dir string `yaml:"dir"`

	// FileNameFormat names report files, without extension.
	// Placeholders: {uuid}, {timestamp}, {date}, {time}, {target}
	// Default: "merge_{date}_{uuid}"
	FileNameFormat string `yaml:"file_name_format"`

	// XLSX writes a workbook with months, duplicates and sources.
	XLSX bool `yaml:"xlsx"`

	// Text writes a plain-text summary log.
	Text bool `yaml:"text"`
}

// Mode returns the configured default concatenation mode.
func (c *Config) Mode() types.Mode {
	m, err := types.ParseMode(c.DefaultMode)
	if err != nil {
		return types.ModeAppend
	}
	return m
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - path: The config file. A missing file at DefaultPath yields defaults;
//     any other missing path is an error.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if path == DefaultPath && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Marker == "" {
		cfg.Marker = types.DefaultMarker
	}
	if cfg.FallbackEncoding == "" {
		cfg.FallbackEncoding = decoder.DefaultFallback
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = string(types.ModeAppend)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "./reports"
	}
	if cfg.Report.FileNameFormat == "" {
		cfg.Report.FileNameFormat = "merge_{date}_{uuid}"
	}
}

// validate checks the configuration values.
func validate(cfg *Config) error {
	if !decoder.SupportedFallback(cfg.FallbackEncoding) {
		return fmt.Errorf("unsupported fallback_encoding %q", cfg.FallbackEncoding)
	}
	if _, err := types.ParseMode(cfg.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q", cfg.LogLevel)
	}
	return nil
}
