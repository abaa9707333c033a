// Package notify announces finished pipeline runs to downstream consumers,
// such as dashboard rebuilders or alerting jobs.
package notify

import (
	"context"
	"time"
)

// Event describes one completed pipeline run.
type Event struct {
	RunID       string    `json:"run_id"`
	Command     string    `json:"command"`
	RecordCount int       `json:"record_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Publisher delivers dataset events to interested subscribers.
type Publisher interface {
	// DatasetUpdated announces that a run finished and the dataset
	// artifacts were refreshed.
	DatasetUpdated(ctx context.Context, event Event) error

	// Close cleans up any client connections and resources.
	Close() error
}

// NoopPublisher discards events. It is the default when no broker is
// configured.
type NoopPublisher struct{}

// DatasetUpdated for NoopPublisher does nothing and returns nil.
func (NoopPublisher) DatasetUpdated(context.Context, Event) error { return nil }

// Close for NoopPublisher does nothing and returns nil.
func (NoopPublisher) Close() error { return nil }
