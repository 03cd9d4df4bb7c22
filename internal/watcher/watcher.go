// Package watcher monitors the config file for edits so the UI can
// pick up theme and registry changes without a restart.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmallory/curio/internal/log"
	"github.com/dmallory/curio/internal/pubsub"
)

// WatcherEventType identifies the kind of watcher notification.
type WatcherEventType int

const (
	// ConfigChanged means the config file was written and settled past
	// the debounce window.
	ConfigChanged WatcherEventType = iota
	// WatcherError carries a filesystem watch failure.
	WatcherError
)

// WatcherEvent is the payload published on the broker.
type WatcherEvent struct {
	Type WatcherEventType
	Path string
	Err  error
}

// Watcher debounces filesystem events on the config file and publishes
// them to a broker, which the app bridges into the update loop.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	configPath string
	debounce   time.Duration
	broker     *pubsub.Broker[WatcherEvent]
	done       chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	ConfigPath  string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(configPath string) Config {
	return Config{
		ConfigPath:  configPath,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a config file watcher publishing to broker.
func New(cfg Config, broker *pubsub.Broker[WatcherEvent]) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher:  fsw,
		configPath: cfg.ConfigPath,
		debounce:   cfg.DebounceDur,
		broker:     broker,
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching the directory containing the config file.
// Watching the directory instead of the file survives editors that
// save via rename.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.configPath)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	log.Debug(log.CatWatcher, "Watching config", "path", w.configPath, "debounce", w.debounce)
	go w.loop()

	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop debounces filesystem events before publishing. A burst of
// writes within the debounce window collapses into one notification.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}
			log.Debug(log.CatWatcher, "Config event", "op", event.Op.String(), "name", event.Name)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{
					Type: ConfigChanged,
					Path: w.configPath,
				})
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err)
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{
				Type: WatcherError,
				Path: w.configPath,
				Err:  err,
			})

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports whether the event touches the config file.
// Create counts because editors often save via write-to-temp + rename.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(event.Name) == filepath.Base(w.configPath)
}
