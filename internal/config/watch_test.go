package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, ctx context.Context, path string) <-chan struct{} {
	t.Helper()
	w, err := NewWatcher(path, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	changed := make(chan struct{}, 8)
	require.NoError(t, w.Start(ctx, func() { changed <- struct{}{} }))
	return changed
}

func TestWatcher_ReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0600))

	changed := startWatcher(t, context.Background(), path)
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0600))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_ReportsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: :1\n"), 0600))

	changed := startWatcher(t, context.Background(), path)

	tmp := filepath.Join(dir, "config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("http:\n  addr: :2\n"), 0600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	changed := startWatcher(t, context.Background(), path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("{}\n"), 0600))

	select {
	case <-changed:
		t.Fatal("unrelated file reported")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	w, err := NewWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func() {}))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	w.Stop()
}

func TestNewWatcher_Errors(t *testing.T) {
	_, err := NewWatcher("")
	assert.ErrorIs(t, err, ErrWatcherFailed)

	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	require.NoError(t, err)
	defer w.Stop()
	assert.ErrorIs(t, w.Start(context.Background(), func() {}), ErrWatcherFailed)
}
