package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmallory/curio/internal/app"
	"github.com/dmallory/curio/internal/config"
	"github.com/dmallory/curio/internal/log"
	"github.com/dmallory/curio/internal/mode"
	"github.com/dmallory/curio/internal/mode/shared"
	"github.com/dmallory/curio/internal/registry"
	"github.com/dmallory/curio/internal/tracing"
)

func init() {
	// Force termenv to query terminal background color BEFORE any
	// Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
}

var (
	version   = "dev"
	cfgFile   string
	baseURL   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "curio",
	Short:   "A terminal ui for the trustworthy artifact registry",
	Long:    `A terminal user interface for browsing, searching, enriching, and managing artifacts (models, datasets, code) in a trustworthy registry.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/curio/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "",
		"registry base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging and the Ctrl+X log overlay")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("registry.base_url", defaults.Registry.BaseURL)
	viper.SetDefault("registry.max_attempts", defaults.Registry.MaxAttempts)
	viper.SetDefault("registry.backoff_base", defaults.Registry.BackoffBase)
	viper.SetDefault("registry.enrich_concurrency", defaults.Registry.EnrichConcurrency)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)
	viper.SetDefault("logging.path", defaults.Logging.Path)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("history.max_entries", defaults.History.MaxEntries)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .curio/config.yaml (current directory)
		// 2. ~/.config/curio/config.yaml (user config)
		if _, err := os.Stat(".curio/config.yaml"); err == nil {
			viper.SetConfigFile(".curio/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "curio"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .curio/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".curio/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)

	if baseURL != "" {
		cfg.Registry.BaseURL = baseURL
	}
	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
}

// reloadConfig re-reads the config file for live reload. Flag
// overrides survive the reload.
func reloadConfig() (config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("re-reading config: %w", err)
	}

	var next config.Config
	if err := viper.Unmarshal(&next); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if baseURL != "" {
		next.Registry.BaseURL = baseURL
	}
	if next.Tracing.FilePath == "" {
		next.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if err := next.Validate(); err != nil {
		return config.Config{}, err
	}
	return next, nil
}

// buildServices constructs the shared service graph used by the TUI
// and the one-shot subcommands.
func buildServices() (mode.Services, error) {
	client, err := registry.NewClient(registry.ClientConfig{BaseURL: cfg.Registry.BaseURL})
	if err != nil {
		return mode.Services{}, err
	}

	submitter := registry.NewSubmitter(client,
		registry.WithMaxAttempts(cfg.Registry.MaxAttempts),
		registry.WithBackoffBase(cfg.Registry.BackoffBase),
	)

	return mode.Services{
		Client:     client,
		Cache:      registry.NewDetailCache(),
		Enricher:   registry.NewEnricher(client, cfg.Registry.EnrichConcurrency),
		Submitter:  submitter,
		Config:     &cfg,
		ConfigPath: viper.ConfigFileUsed(),
		Clipboard:  shared.SystemClipboard{},
	}, nil
}

func runApp(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	debug := debugFlag || os.Getenv("CURIO_DEBUG") != ""
	if debug {
		cleanup, err := log.Init(cfg.Logging.Path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
	}

	tracer, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(ctx)
	}()

	services, err := buildServices()
	if err != nil {
		return fmt.Errorf("connecting to registry: %w", err)
	}

	// Mouse zones are resolved globally, once per rendered frame
	zone.NewGlobal()
	defer zone.Close()

	model := app.New(app.Config{
		Services:     services,
		DebugMode:    debug,
		WatchConfig:  services.ConfigPath != "",
		ReloadConfig: reloadConfig,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher and listener resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
