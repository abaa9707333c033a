package api

import (
	"sync"
	"time"
)

// RunSnapshot describes the run currently executing (or the most recently
// finished one, until a new run begins).
type RunSnapshot struct {
	RunID     string           `json:"run_id"`
	Command   string           `json:"command"`
	StartedAt time.Time        `json:"started_at"`
	Counts    map[string]int64 `json:"counts"`
}

// StatusTracker holds the snapshot served by /v1/status. All methods are
// safe for concurrent use.
type StatusTracker struct {
	mu   sync.RWMutex
	snap RunSnapshot
}

// NewStatusTracker returns an empty tracker.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// Begin resets the snapshot for a new run.
func (t *StatusTracker) Begin(runID, command string, startedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = RunSnapshot{
		RunID:     runID,
		Command:   command,
		StartedAt: startedAt,
		Counts:    map[string]int64{},
	}
}

// SetCount records a per-stage counter on the current snapshot.
func (t *StatusTracker) SetCount(name string, value int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snap.Counts == nil {
		t.snap.Counts = map[string]int64{}
	}
	t.snap.Counts[name] = value
}

// Snapshot returns a copy of the current snapshot. Mutating the returned
// Counts map does not affect the tracker.
func (t *StatusTracker) Snapshot() RunSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := t.snap
	out.Counts = make(map[string]int64, len(t.snap.Counts))
	for k, v := range t.snap.Counts {
		out.Counts[k] = v
	}
	return out
}
