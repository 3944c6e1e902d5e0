// Package recovery implements snapshot-driven resume: given an
// execution id, it loads the persisted execution record, determines
// which steps already completed from the snapshot (tolerating several
// schema shapes), and restores a context the caller resumes from —
// skipping completed work rather than replaying it.
package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// Status is an execution record's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// terminal reports whether an execution in this status refuses resume.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ExecutionRecord is the persisted record a Store loads by execution
// id. SnapshotJSON is treated as opaque by the store; only this
// package interprets its shape.
type ExecutionRecord struct {
	ExecutionID    string
	Status         Status
	SnapshotJSON   []byte
	CheckpointTime time.Time
}

// Store is the persistence boundary — checkpoint/execution storage is
// explicitly out of scope for the core; a host backs this with its own
// database or file store.
type Store interface {
	Load(ctx context.Context, executionID string) (ExecutionRecord, error)
	UpdateStatus(ctx context.Context, executionID string, status Status) error
}

var (
	ErrExecutionTerminal = errors.New("recovery: execution already completed or cancelled")
	ErrSnapshotExpired   = errors.New("recovery: snapshot outside the configured expiry window")
	ErrUnrecognizedSnapshot = errors.New("recovery: snapshot has no recognizable story list")
)

// EventType discriminates a resume Event.
type EventType string

const (
	EventStarted         EventType = "started"
	EventStorySkipped    EventType = "story_skipped"
	EventContextRestored EventType = "context_restored"
	EventResuming        EventType = "resuming"
)

// Event is one emitted resume-lifecycle notification.
type Event struct {
	Type      EventType
	StoryID   string // set on StorySkipped
	Remaining int    // set on ContextRestored
	From      string // set on Resuming
}

// RestoredContext is what a plan executor or agentic loop resumes from.
type RestoredContext struct {
	ExecutionID       string
	CompletedStoryIDs []string
	RemainingStoryIDs []string
	NextStoryID       string
}

// ExpiryConfig optionally bounds how old a checkpoint may be before
// resume is refused, expressed as a cron window: a checkpoint whose
// CheckpointTime falls before the most recent tick of Expr (relative
// to Now) is rejected. A zero ExpiryConfig disables the check.
type ExpiryConfig struct {
	Expr string
	Now  func() time.Time // defaults to time.Now
}

func (c ExpiryConfig) enabled() bool { return c.Expr != "" }

func (c ExpiryConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// checkExpiry refuses a checkpoint older than the most recent tick of
// the configured cron expression at-or-before now.
func checkExpiry(cfg ExpiryConfig, checkpointTime time.Time) error {
	if !cfg.enabled() {
		return nil
	}
	if !gronx.IsValid(cfg.Expr) {
		return fmt.Errorf("recovery: invalid expiry cron expression %q", cfg.Expr)
	}
	windowStart, err := gronx.PrevTickBefore(cfg.Expr, cfg.now(), true)
	if err != nil {
		return fmt.Errorf("recovery: computing expiry window: %w", err)
	}
	if checkpointTime.Before(windowStart) {
		return ErrSnapshotExpired
	}
	return nil
}

// Resume loads the execution record, refuses terminal or expired
// executions, parses the snapshot's story list under a sequence of
// schema tolerances, transitions the execution to running, and returns
// the restored context alongside the events a caller should emit in
// order.
func Resume(ctx context.Context, store Store, executionID string, expiry ExpiryConfig) (RestoredContext, []Event, error) {
	record, err := store.Load(ctx, executionID)
	if err != nil {
		return RestoredContext{}, nil, err
	}
	if record.Status.terminal() {
		return RestoredContext{}, nil, ErrExecutionTerminal
	}
	if err := checkExpiry(expiry, record.CheckpointTime); err != nil {
		return RestoredContext{}, nil, err
	}

	completed, remaining, err := parseSnapshot(record.SnapshotJSON)
	if err != nil {
		return RestoredContext{}, nil, err
	}

	if err := store.UpdateStatus(ctx, executionID, StatusRunning); err != nil {
		return RestoredContext{}, nil, err
	}

	events := []Event{{Type: EventStarted}}
	for _, id := range completed {
		events = append(events, Event{Type: EventStorySkipped, StoryID: id})
	}
	events = append(events, Event{Type: EventContextRestored, Remaining: len(remaining)})

	var next string
	if len(remaining) > 0 {
		next = remaining[0]
		events = append(events, Event{Type: EventResuming, From: next})
	}

	return RestoredContext{
		ExecutionID:       executionID,
		CompletedStoryIDs: completed,
		RemainingStoryIDs: remaining,
		NextStoryID:       next,
	}, events, nil
}

type story struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type snapshotShape struct {
	CompletedStoryIDs []string `json:"completed_story_ids"`
	RemainingStoryIDs []string `json:"remaining_story_ids"`
	PRD               struct {
		Stories []story `json:"stories"`
	} `json:"prd"`
	Stories []story `json:"stories"`
}

// parseSnapshot tolerates three schema shapes, tried in order: explicit
// completed/remaining id arrays (remaining, if absent, is derived as
// every story in prd.stories/stories not named completed); status
// fields on prd.stories; status fields on top-level stories. A story is
// "completed" when its status is "completed" or "done".
func parseSnapshot(raw []byte) (completed, remaining []string, err error) {
	var snap snapshotShape
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil, fmt.Errorf("recovery: parsing snapshot: %w", err)
	}

	allIDs := storyIDs(snap.PRD.Stories)
	if len(allIDs) == 0 {
		allIDs = storyIDs(snap.Stories)
	}

	if len(snap.CompletedStoryIDs) > 0 || len(snap.RemainingStoryIDs) > 0 {
		completed = snap.CompletedStoryIDs
		if len(snap.RemainingStoryIDs) > 0 {
			remaining = snap.RemainingStoryIDs
		} else {
			remaining = subtract(allIDs, completed)
		}
		return completed, remaining, nil
	}

	if len(snap.PRD.Stories) > 0 {
		completed, remaining = splitByStatus(snap.PRD.Stories)
		return completed, remaining, nil
	}
	if len(snap.Stories) > 0 {
		completed, remaining = splitByStatus(snap.Stories)
		return completed, remaining, nil
	}

	return nil, nil, ErrUnrecognizedSnapshot
}

func storyIDs(stories []story) []string {
	ids := make([]string, 0, len(stories))
	for _, s := range stories {
		ids = append(ids, s.ID)
	}
	return ids
}

func subtract(all, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []string
	for _, id := range all {
		if !excluded[id] {
			out = append(out, id)
		}
	}
	return out
}

// splitByStatus partitions a story list by status, preserving order
// within each half. A story is complete when its status is "completed"
// or "done"; everything else (including empty status) is remaining.
func splitByStatus(stories []story) (completed, remaining []string) {
	for _, s := range stories {
		if s.Status == "completed" || s.Status == "done" {
			completed = append(completed, s.ID)
		} else {
			remaining = append(remaining, s.ID)
		}
	}
	return completed, remaining
}
