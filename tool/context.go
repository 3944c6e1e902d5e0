package tool

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	agentcoreerrors "github.com/arborcode/agentcore/errors"
	"github.com/arborcode/agentcore/event"
)

// readCacheKey identifies a memoised read by the triple the file-sync
// watcher and the agentic loop both need to invalidate on: the canonical
// path plus the exact offset/limit window requested.
type readCacheKey struct {
	path   string
	offset int
	limit  int
}

type readCacheEntry struct {
	mtime         time.Time
	lineCount     int
	size          int64
	contentHash   string
	firstLines    string
}

// ExecutionContext is the per-agentic-loop scratchpad threaded through
// every tool call: the read cache, the read-before-write set, and (for
// Task) the task-dedup cache and sub-agent spawn handle. A fresh
// ExecutionContext is created per loop; nothing in it survives across
// loops except what the host explicitly persists (e.g. session state).
type ExecutionContext struct {
	WorkingDirectory string
	ProjectRoot      string
	AnalysisMode     bool

	mu        sync.Mutex
	readCache map[readCacheKey]readCacheEntry
	readSet   map[string]struct{}

	dedupMu    sync.Mutex
	taskDedup  map[string]string // prompt hash -> cached final output

	Spawner      SpawnerHandle // nil unless this context belongs to a general-purpose-capable agent
	Depth        int
	MaxDepth     int
}

// SpawnerHandle is the narrow surface the Task tool needs from the
// sub-agent spawner. Defined here (not imported from the subagent package)
// so tool has no dependency on subagent; subagent implements this
// interface and the host wires it in when constructing an ExecutionContext.
type SpawnerHandle interface {
	Spawn(ctx context.Context, execCtx *ExecutionContext, agentType, prompt string) (output string, cached bool, subEvents []event.Event, err error)
}

func NewExecutionContext(workingDir, projectRoot string) *ExecutionContext {
	return &ExecutionContext{
		WorkingDirectory: workingDir,
		ProjectRoot:      projectRoot,
		readCache:        make(map[readCacheKey]readCacheEntry),
		readSet:          make(map[string]struct{}),
		taskDedup:        make(map[string]string),
		MaxDepth:         3,
	}
}

// CanonicalPath normalises a path for use as a read-cache/read-set key.
// On case-insensitive filesystems (Windows, macOS by default) the path is
// lower-cased after making it absolute and cleaning it, so that "Foo.go"
// and "foo.go" collide in the read-set the way they collide on disk; on
// Linux the case is preserved since the filesystem is case-sensitive.
func (ec *ExecutionContext) CanonicalPath(path string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(ec.WorkingDirectory, abs)
	}
	abs = filepath.Clean(abs)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.ToLower(abs)
	}
	return abs
}

// MarkRead records that path was read in this loop, satisfying the
// read-before-write precondition for later Write/Edit/MultiEdit calls.
func (ec *ExecutionContext) MarkRead(path string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.readSet[ec.CanonicalPath(path)] = struct{}{}
}

// WasRead reports whether path has been read in this loop.
func (ec *ExecutionContext) WasRead(path string) bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	_, ok := ec.readSet[ec.CanonicalPath(path)]
	return ok
}

// CheckReadBeforeWrite enforces the read-before-write invariant: a write
// to an existing, never-read path fails with a stale_write error. Writes
// to paths that don't yet exist on disk bypass the check, since there is
// nothing to have raced against.
func (ec *ExecutionContext) CheckReadBeforeWrite(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return nil
	}
	if ec.WasRead(path) {
		return nil
	}
	return agentcoreerrors.New("tool", "write", agentcoreerrors.StaleWrite,
		"path "+path+" was not read in this context before being written", nil)
}

// CachedRead looks up the read cache for (path, offset, limit). A hit
// whose mtime still matches disk returns the cached entry and true,
// signalling the caller should emit a [DEDUP] marker instead of
// re-reading. A stale mtime evicts the entry and returns false.
func (ec *ExecutionContext) CachedRead(path string, offset, limit int) (readCacheEntry, bool) {
	canon := ec.CanonicalPath(path)
	key := readCacheKey{path: canon, offset: offset, limit: limit}

	info, statErr := os.Stat(path)

	ec.mu.Lock()
	defer ec.mu.Unlock()

	entry, ok := ec.readCache[key]
	if !ok {
		return readCacheEntry{}, false
	}
	if statErr != nil || !info.ModTime().Equal(entry.mtime) {
		delete(ec.readCache, key)
		return readCacheEntry{}, false
	}
	return entry, true
}

// StoreRead populates the read cache after an actual read.
func (ec *ExecutionContext) StoreRead(path string, offset, limit int, content string, mtime time.Time, size int64) {
	canon := ec.CanonicalPath(path)
	key := readCacheKey{path: canon, offset: offset, limit: limit}

	sum := sha256.Sum256([]byte(content))
	firstLines := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 && idx < len(content) {
		end := idx
		for i := 0; i < 2 && end < len(content); i++ {
			next := strings.IndexByte(content[end+1:], '\n')
			if next < 0 {
				end = len(content)
				break
			}
			end += next + 1
		}
		firstLines = content[:end]
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.readCache[key] = readCacheEntry{
		mtime:       mtime,
		lineCount:   strings.Count(content, "\n") + 1,
		size:        size,
		contentHash: hex.EncodeToString(sum[:]),
		firstLines:  firstLines,
	}
}

// HashPrompt produces the task-dedup key for a Task tool prompt.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// CachedTaskOutput returns a previously recorded Task output for an
// identical prompt within this loop, if any.
func (ec *ExecutionContext) CachedTaskOutput(prompt string) (string, bool) {
	ec.dedupMu.Lock()
	defer ec.dedupMu.Unlock()
	out, ok := ec.taskDedup[HashPrompt(prompt)]
	return out, ok
}

// StoreTaskOutput records a Task output for future dedup hits. Narration-
// only outputs (the spawner's progress commentary, not substantive final
// results) should not be stored by callers.
func (ec *ExecutionContext) StoreTaskOutput(prompt, output string) {
	ec.dedupMu.Lock()
	defer ec.dedupMu.Unlock()
	ec.taskDedup[HashPrompt(prompt)] = output
}

// ChildContext derives an ExecutionContext for a spawned sub-agent: fresh
// read cache and read-set (sub-agents don't inherit the parent's, since
// the parent's read-before-write guarantees are scoped to its own loop),
// one depth deeper, same working directory and spawner handle.
func (ec *ExecutionContext) ChildContext() *ExecutionContext {
	child := NewExecutionContext(ec.WorkingDirectory, ec.ProjectRoot)
	child.Spawner = ec.Spawner
	child.Depth = ec.Depth + 1
	child.MaxDepth = ec.MaxDepth
	child.AnalysisMode = ec.AnalysisMode
	return child
}
