package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmallory/curio/internal/pubsub"
	"github.com/dmallory/curio/internal/watcher"
)

func startWatcher(t *testing.T, configPath string, debounce time.Duration) <-chan pubsub.Event[watcher.WatcherEvent] {
	t.Helper()

	broker := pubsub.NewBroker[watcher.WatcherEvent]()
	t.Cleanup(broker.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch := broker.Subscribe(ctx)

	w, err := watcher.New(watcher.Config{ConfigPath: configPath, DebounceDur: debounce}, broker)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	return ch
}

func TestWatcher_DebouncesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("a: 1\n"), 0o600))

	ch := startWatcher(t, configPath, 50*time.Millisecond)

	// A burst of writes within the debounce window
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf("a: %d\n", i)), 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	// Exactly one notification arrives once the burst settles
	select {
	case event := <-ch:
		assert.Equal(t, watcher.ConfigChanged, event.Payload.Type)
		assert.Equal(t, configPath, event.Payload.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a ConfigChanged event")
	}

	select {
	case event := <-ch:
		t.Fatalf("expected burst to collapse into one event, got extra %v", event.Payload.Type)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_SurvivesRenameSave(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("a: 1\n"), 0o600))

	ch := startWatcher(t, configPath, 30*time.Millisecond)

	// Editors often save via write-to-temp + rename
	tmpPath := filepath.Join(dir, "config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmpPath, []byte("a: 2\n"), 0o600))
	require.NoError(t, os.Rename(tmpPath, configPath))

	select {
	case event := <-ch:
		assert.Equal(t, watcher.ConfigChanged, event.Payload.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a ConfigChanged event after rename-save")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("a: 1\n"), 0o600))

	ch := startWatcher(t, configPath, 30*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0o600))

	select {
	case event := <-ch:
		t.Fatalf("expected no event for sibling file, got %v", event.Payload.Type)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopTerminatesCleanly(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("a: 1\n"), 0o600))

	broker := pubsub.NewBroker[watcher.WatcherEvent]()
	defer broker.Close()

	w, err := watcher.New(watcher.DefaultConfig(configPath), broker)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
}
