// Package history persists pipeline run outcomes so operators can audit
// what each invocation did and when.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run is one pipeline invocation outcome.
type Run struct {
	ID          uuid.UUID
	Command     string
	StartedAt   time.Time
	FinishedAt  time.Time
	RecordCount int
	ErrorCount  int
	Succeeded   bool
	// Detail carries command-specific counters, serialized as JSON.
	Detail map[string]string
}

// Store records pipeline runs.
type Store interface {
	RecordRun(ctx context.Context, run Run) error
	Close()
}

// NoopStore discards run history. It is the default when no database is
// configured.
type NoopStore struct{}

func (NoopStore) RecordRun(context.Context, Run) error { return nil }

func (NoopStore) Close() {}
