// Package watcher provides a debounced filesystem watcher with three
// target modes (a projects-root directory, a single project directory,
// or one specific file), emitting typed change events rather than raw
// fsnotify operations. It ports the debounce-and-typed-event structure
// of the teacher's rag.FileWatcher to this module's target/event model.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TargetKind selects what a Watcher watches and how it classifies
// events for that target.
type TargetKind string

const (
	// TargetProjectsRoot watches a directory's immediate children only,
	// emitting ProjectCreate/ProjectDelete for each.
	TargetProjectsRoot TargetKind = "projects_root"
	// TargetProject recursively watches one project directory, emitting
	// PrdChange/ProgressChange/FileChange depending on the changed file.
	TargetProject TargetKind = "project"
	// TargetFile watches a single file by watching its parent directory
	// and filtering to that one name.
	TargetFile TargetKind = "file"
)

// EventType discriminates a watch Event.
type EventType string

const (
	EventProjectCreate  EventType = "project_create"
	EventProjectDelete  EventType = "project_delete"
	EventPrdChange      EventType = "prd_change"
	EventProgressChange EventType = "progress_change"
	EventFileChange     EventType = "file_change"
	EventWatchError     EventType = "watch_error"
)

// Event is one typed, debounced change notification.
type Event struct {
	Type EventType
	Path string
	Err  error // set only on EventWatchError
}

// Config configures a Watcher.
type Config struct {
	Target        TargetKind
	Path          string        // directory for ProjectsRoot/Project, file path for File
	DebounceDelay time.Duration // default 100ms
}

// Watcher watches one target and emits typed, debounced Events.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running bool
}

func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Watcher{cfg: cfg, fsw: fsw, events: make(chan Event, 100)}, nil
}

// Start begins watching and returns the event channel. Calling Start
// twice on an already-running Watcher returns the existing channel.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return w.events, nil
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	if err := w.setup(); err != nil {
		return nil, err
	}
	w.running = true
	go w.loop()
	slog.Info("started watcher", "target", w.cfg.Target, "path", w.cfg.Path)
	return w.events, nil
}

// Stop stops watching and closes the event channel.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.cancel()
	w.running = false
	err := w.fsw.Close()
	close(w.events)
	slog.Info("stopped watcher", "target", w.cfg.Target, "path", w.cfg.Path)
	return err
}

func (w *Watcher) setup() error {
	switch w.cfg.Target {
	case TargetFile:
		return w.fsw.Add(filepath.Dir(w.cfg.Path))
	case TargetProjectsRoot:
		return w.fsw.Add(w.cfg.Path)
	case TargetProject:
		return filepath.Walk(w.cfg.Path, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if err := w.fsw.Add(path); err != nil {
					slog.Warn("failed to watch directory", "path", path, "error", err)
				}
			}
			return nil
		})
	default:
		return w.fsw.Add(w.cfg.Path)
	}
}

func (w *Watcher) loop() {
	pending := make(map[string]fsnotify.Event)
	var pendingMu sync.Mutex
	var timer *time.Timer

	flush := func() {
		pendingMu.Lock()
		batch := pending
		pending = make(map[string]fsnotify.Event)
		pendingMu.Unlock()
		for _, raw := range batch {
			if !w.accepts(raw) {
				continue
			}
			w.emit(w.classify(raw))
		}
	}

	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			flush()
			return

		case raw, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if raw.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if w.cfg.Target == TargetProject && raw.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(raw.Name); err != nil {
						slog.Warn("failed to watch new directory", "path", raw.Name, "error", err)
					}
				}
			}

			pendingMu.Lock()
			pending[raw.Name] = raw
			pendingMu.Unlock()

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.DebounceDelay, flush)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "path", w.cfg.Path, "error", err)
			w.emit(Event{Type: EventWatchError, Path: w.cfg.Path, Err: err})
		}
	}
}

// accepts filters events irrelevant to the watcher's target mode — in
// TargetFile mode, only the watched file's own name passes, since the
// underlying fsnotify watch is on its parent directory.
func (w *Watcher) accepts(raw fsnotify.Event) bool {
	if w.cfg.Target != TargetFile {
		return true
	}
	return filepath.Base(raw.Name) == filepath.Base(w.cfg.Path)
}

// classify maps a raw fsnotify event to a typed Event according to the
// watcher's target mode.
func (w *Watcher) classify(raw fsnotify.Event) Event {
	path := raw.Name

	switch {
	case w.cfg.Target == TargetProjectsRoot:
		if raw.Op&fsnotify.Create == fsnotify.Create {
			return Event{Type: EventProjectCreate, Path: path}
		}
		if raw.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			return Event{Type: EventProjectDelete, Path: path}
		}
		return Event{Type: EventFileChange, Path: path}

	case w.cfg.Target == TargetProject:
		switch filepath.Base(path) {
		case "prd.json":
			return Event{Type: EventPrdChange, Path: path}
		case "progress.txt":
			return Event{Type: EventProgressChange, Path: path}
		default:
			return Event{Type: EventFileChange, Path: path}
		}

	default: // TargetFile, matching name
		return Event{Type: EventFileChange, Path: path}
	}
}

func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	case <-w.ctx.Done():
	default:
		slog.Warn("watch event channel full, dropping event", "path", e.Path, "type", e.Type)
	}
}

// IsRunning reports whether the watcher is actively watching.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
