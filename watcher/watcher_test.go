package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, events <-chan Event, want EventType, timeout time.Duration) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case e := <-events:
			if e.Type == want {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %s", want)
		}
	}
}

func TestWatcher_ProjectsRootEmitsCreateForNewChild(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Target: TargetProjectsRoot, Path: dir, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Start(ctx)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "new-project"), 0o755))

	e := waitForEvent(t, events, EventProjectCreate, 2*time.Second)
	assert.Contains(t, e.Path, "new-project")
}

func TestWatcher_ProjectEmitsPrdChangeForPrdJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prd.json"), []byte("{}"), 0o644))

	w, err := New(Config{Target: TargetProject, Path: dir, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Start(ctx)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "prd.json"), []byte(`{"v":1}`), 0o644))

	e := waitForEvent(t, events, EventPrdChange, 2*time.Second)
	assert.Equal(t, filepath.Join(dir, "prd.json"), e.Path)
}

func TestWatcher_ProjectEmitsGenericFileChangeForOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("a"), 0o644))

	w, err := New(Config{Target: TargetProject, Path: dir, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Start(ctx)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("b"), 0o644))

	e := waitForEvent(t, events, EventFileChange, 2*time.Second)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), e.Path)
}

func TestWatcher_FileTargetIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling.txt"), []byte("a"), 0o644))

	w, err := New(Config{Target: TargetFile, Path: target, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Start(ctx)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("b"), 0o644))

	e := waitForEvent(t, events, EventFileChange, 2*time.Second)
	assert.Equal(t, target, e.Path)
}

func TestWatcher_DefaultsDebounceDelayTo100ms(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Target: TargetProjectsRoot, Path: dir})
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, w.cfg.DebounceDelay)
}

func TestWatcher_StartTwiceReturnsSameChannel(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Target: TargetProjectsRoot, Path: dir, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer w.Stop()

	first, err := w.Start(ctx)
	require.NoError(t, err)
	second, err := w.Start(ctx)
	require.NoError(t, err)
	assert.True(t, first == second)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Target: TargetProjectsRoot, Path: dir, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err = w.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}
