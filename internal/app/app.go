// Package app contains the root application model.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/dmallory/curio/internal/config"
	"github.com/dmallory/curio/internal/log"
	"github.com/dmallory/curio/internal/mode"
	"github.com/dmallory/curio/internal/mode/browse"
	"github.com/dmallory/curio/internal/mode/inspect"
	"github.com/dmallory/curio/internal/pubsub"
	"github.com/dmallory/curio/internal/ui/logoverlay"
	"github.com/dmallory/curio/internal/ui/styles"
	"github.com/dmallory/curio/internal/ui/toaster"
	"github.com/dmallory/curio/internal/watcher"
)

// toastDuration is how long a toast stays on screen.
const toastDuration = 3 * time.Second

// Config bundles everything the root model needs from the command layer.
type Config struct {
	Services mode.Services

	// DebugMode enables the log overlay (Ctrl+X toggle).
	DebugMode bool

	// WatchConfig enables live reload of the config file.
	WatchConfig bool

	// ReloadConfig re-reads the config from disk. Called when the
	// watcher reports a change; may be nil when WatchConfig is false.
	ReloadConfig func() (config.Config, error)
}

// Model is the root application state.
type Model struct {
	// Mode management
	currentMode mode.AppMode
	browse      browse.Model
	inspect     inspect.Model

	// Shared services (passed to mode controllers)
	services mode.Services
	reload   func() (config.Config, error)

	// Global state
	width  int
	height int

	// Centralized toaster - owned by app, not individual modes
	toaster toaster.Model

	debugMode   bool
	logOverlay  logoverlay.Model
	logCancel   context.CancelFunc
	logListener *log.LogListener

	// Config file watcher for live reload (pubsub-based)
	watcherHandle   *watcher.Watcher
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]
}

// New creates the root application model.
func New(cfg Config) Model {
	var (
		watcherHandle   *watcher.Watcher
		watcherCancel   context.CancelFunc
		watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]
	)

	if cfg.WatchConfig && cfg.Services.ConfigPath != "" {
		broker := pubsub.NewBroker[watcher.WatcherEvent]()
		w, err := watcher.New(watcher.DefaultConfig(cfg.Services.ConfigPath), broker)
		if err == nil {
			if err := w.Start(); err == nil {
				var watcherCtx context.Context
				watcherHandle = w
				watcherCtx, watcherCancel = context.WithCancel(context.Background())
				watcherListener = pubsub.NewContinuousListener(watcherCtx, broker)
			} else {
				_ = w.Stop()
			}
		}
		// Watcher init errors are non-fatal; the app works without live reload
	}

	var (
		logCancel   context.CancelFunc
		logListener *log.LogListener
	)
	if cfg.DebugMode {
		var logCtx context.Context
		logCtx, logCancel = context.WithCancel(context.Background())
		logListener = log.NewListener(logCtx)
	}

	return Model{
		currentMode:     mode.ModeBrowse,
		browse:          browse.New(cfg.Services),
		services:        cfg.Services,
		reload:          cfg.ReloadConfig,
		toaster:         toaster.New(),
		debugMode:       cfg.DebugMode,
		logOverlay:      logoverlay.New(),
		logCancel:       logCancel,
		logListener:     logListener,
		watcherHandle:   watcherHandle,
		watcherCancel:   watcherCancel,
		watcherListener: watcherListener,
	}
}

// Init implements tea.Model. Starts browse mode and arms the watcher
// and log listeners when enabled.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.browse.Init()}

	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.browse = m.browse.SetSize(msg.Width, msg.Height).(browse.Model)
		if m.currentMode == mode.ModeInspect {
			m.inspect = m.inspect.SetSize(msg.Width, msg.Height).(inspect.Model)
		}
		m.logOverlay.SetSize(msg.Width, msg.Height)

		return m, nil

	case tea.MouseMsg:
		// The log overlay swallows mouse input while visible
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}

	case log.LogEvent:
		m.logOverlay.Refresh()
		if m.logListener != nil {
			return m, m.logListener.Listen()
		}
		return m, nil

	case tea.KeyMsg:
		if m.debugMode && msg.String() == "ctrl+x" {
			m.logOverlay.Toggle()
			return m, nil
		}

		// The log overlay takes precedence for key input when visible
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}

	case browse.OpenInspectMsg:
		log.Info(log.CatMode, "Switching mode", "from", "browse", "to", "inspect", "id", msg.ID)
		m.currentMode = mode.ModeInspect
		m.inspect = inspect.New(m.services, msg.ID, msg.Type)
		m.inspect = m.inspect.SetSize(m.width, m.height).(inspect.Model)
		return m, m.inspect.Init()

	case inspect.BackMsg:
		log.Info(log.CatMode, "Switching mode", "from", "inspect", "to", "browse")
		m.currentMode = mode.ModeBrowse
		return m, nil

	case inspect.RefreshCatalogMsg:
		// Mutations made in inspect mode invalidate the browse catalog
		next, cmd := m.browse.Refresh()
		m.browse = next.(browse.Model)
		return m, cmd

	case pubsub.Event[watcher.WatcherEvent]:
		return m.handleWatcherEvent(msg)

	case mode.ShowToastMsg:
		m.toaster = m.toaster.Show(msg.Message, msg.Style)
		return m, toaster.ScheduleDismiss(toastDuration)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Hide()
		return m, nil

	case logoverlay.CloseMsg:
		// Overlay already hid itself
		return m, nil
	}

	// Delegate all remaining messages to the active mode controller
	switch m.currentMode {
	case mode.ModeInspect:
		next, cmd := m.inspect.Update(msg)
		m.inspect = next.(inspect.Model)
		return m, cmd

	default:
		next, cmd := m.browse.Update(msg)
		m.browse = next.(browse.Model)
		return m, cmd
	}
}

// handleWatcherEvent reloads config when the file changes and re-arms
// the listener on every path.
func (m Model) handleWatcherEvent(msg pubsub.Event[watcher.WatcherEvent]) (tea.Model, tea.Cmd) {
	rearm := func() tea.Cmd {
		if m.watcherListener != nil {
			return m.watcherListener.Listen()
		}
		return nil
	}

	switch msg.Payload.Type {
	case watcher.ConfigChanged:
		if m.reload == nil {
			return m, rearm()
		}

		cfg, err := m.reload()
		if err != nil {
			log.ErrorErr(log.CatConfig, "Config reload failed", err)
			m.toaster = m.toaster.Show("Config reload failed: "+err.Error(), toaster.StyleError)
			return m, tea.Batch(toaster.ScheduleDismiss(toastDuration), rearm())
		}

		// Modes share the config pointer, so updating in place propagates
		*m.services.Config = cfg
		styles.ApplyTheme(cfg.Theme.Highlight, cfg.Theme.Subtle, cfg.Theme.Error, cfg.Theme.Success)

		log.Info(log.CatConfig, "Config reloaded", "path", msg.Payload.Path)
		m.toaster = m.toaster.Show("Configuration reloaded", toaster.StyleInfo)
		return m, tea.Batch(toaster.ScheduleDismiss(toastDuration), rearm())

	case watcher.WatcherError:
		log.ErrorErr(log.CatWatcher, "Watcher error received", msg.Payload.Err)
		return m, rearm()
	}

	return m, rearm()
}

// View implements tea.Model.
func (m Model) View() string {
	var view string
	switch m.currentMode {
	case mode.ModeInspect:
		view = m.inspect.View()
	default:
		view = m.browse.View()
	}

	// Overlay toaster on top of the active mode's view
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}

	// Overlay log viewer on top (only in debug mode when visible)
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}

	// Resolve mouse zone markers at the top level, once per frame
	return zone.Scan(view)
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.logCancel != nil {
		m.logCancel()
	}

	// Cancel watcher subscription context (stops listener)
	if m.watcherCancel != nil {
		m.watcherCancel()
	}

	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}

	return nil
}
