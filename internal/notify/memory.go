package notify

import (
	"context"
	"sync"
)

// MemoryPublisher stores published events for inspection. It is useful for
// tests and for running the pipeline without a real broker.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryPublisher returns an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// DatasetUpdated records the event.
func (p *MemoryPublisher) DatasetUpdated(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns the recorded events.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Close for MemoryPublisher does nothing and returns nil.
func (p *MemoryPublisher) Close() error { return nil }
