// Package config provides configuration types, defaults, and
// persistence for curio.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dmallory/curio/internal/log"
)

// Config holds all configuration options for curio.
type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	UI       UIConfig       `mapstructure:"ui"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	History  HistoryConfig  `mapstructure:"history"`
}

// RegistryConfig holds the connection and orchestration settings for
// the artifact registry.
type RegistryConfig struct {
	// BaseURL is the registry root, e.g. "http://localhost:8080".
	BaseURL string `mapstructure:"base_url"`

	// MaxAttempts is the total submission attempt budget (first try
	// included). Default: 3.
	MaxAttempts int `mapstructure:"max_attempts"`

	// BackoffBase is the delay before the first submission retry;
	// each later retry doubles it. Default: 1s.
	BackoffBase time.Duration `mapstructure:"backoff_base"`

	// EnrichConcurrency bounds how many artifacts may be enriched
	// simultaneously. 0 disables the bound. Default: 0.
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig holds theme color overrides. Empty values keep the
// built-in defaults.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"` // focused borders, active elements
	Subtle    string `mapstructure:"subtle"`    // hints, help text, unfocused borders
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// LoggingConfig holds debug log settings. Logging only activates with
// --debug or CURIO_DEBUG; this section controls where it goes.
type LoggingConfig struct {
	// Path of the debug log file. Default: curio-debug.log in the
	// working directory.
	Path string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry tracing configuration for the
// registry client.
type TracingConfig struct {
	// Enabled controls whether tracing is active. Default: false.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp". Default: "file".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/curio/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0). Default: 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`
}

// HistoryConfig holds the persisted search history.
type HistoryConfig struct {
	// MaxEntries caps the history length. Default: 25.
	MaxEntries int `mapstructure:"max_entries"`

	// Searches are the remembered patterns, most recent first.
	Searches []string `mapstructure:"searches"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Registry: RegistryConfig{
			BaseURL:           "http://localhost:8080",
			MaxAttempts:       3,
			BackoffBase:       time.Second,
			EnrichConcurrency: 0,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			MarkdownStyle: "dark",
		},
		Logging: LoggingConfig{
			Path: "curio-debug.log",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		History: HistoryConfig{
			MaxEntries: 25,
		},
	}
}

// DefaultTracesFilePath returns the default path for trace file
// export, or empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "curio", "traces", "traces.jsonl")
}

// ValidateRegistry checks registry configuration for errors.
func ValidateRegistry(reg RegistryConfig) error {
	if reg.BaseURL == "" {
		return fmt.Errorf("registry.base_url is required")
	}
	parsed, err := url.Parse(reg.BaseURL)
	if err != nil {
		return fmt.Errorf("registry.base_url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("registry.base_url must use http or https, got %q", reg.BaseURL)
	}
	if reg.MaxAttempts < 1 {
		return fmt.Errorf("registry.max_attempts must be at least 1, got %d", reg.MaxAttempts)
	}
	if reg.BackoffBase <= 0 {
		return fmt.Errorf("registry.backoff_base must be positive, got %v", reg.BackoffBase)
	}
	if reg.EnrichConcurrency < 0 {
		return fmt.Errorf("registry.enrich_concurrency must not be negative, got %d", reg.EnrichConcurrency)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Empty values use defaults.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateHistory checks history configuration for errors.
func ValidateHistory(history HistoryConfig) error {
	if history.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative, got %d", history.MaxEntries)
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateRegistry(c.Registry); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	return ValidateHistory(c.History)
}

// DefaultConfigTemplate returns the default config as a YAML string
// with comments.
func DefaultConfigTemplate() string {
	return `# Curio Configuration

# Artifact registry connection
registry:
  # Registry root URL (required)
  base_url: http://localhost:8080

  # Total submission attempt budget, first try included
  max_attempts: 3

  # Delay before the first submission retry; doubles on each retry
  backoff_base: 1s

  # Maximum artifacts enriched simultaneously (0 = unbounded)
  enrich_concurrency: 0

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  # markdown_style: dark  # Help rendering style: "dark" (default) or "light"

# Theme configuration (hex colors; empty keeps defaults)
theme:
  # highlight: "#54A0FF"  # Focused borders, active elements
  # subtle: "#696969"     # Hints, help text, unfocused borders
  # error: "#FF8787"
  # success: "#73F59F"

# Debug log settings (logging activates with --debug or CURIO_DEBUG)
# logging:
#   path: curio-debug.log

# Registry request tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/curio/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Search history (managed by curio; cycle with ctrl+p/ctrl+n)
history:
  max_entries: 25
`
}

// WriteDefaultConfig creates a config file at the given path with
// default settings and comments. Creates the parent directory if it
// doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
