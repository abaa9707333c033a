// Package archive mirrors pipeline artifacts (the enriched dataset, extracted
// summary text) to a blob store so they survive outside the working tree.
package archive

import "context"

// Provider is the blob store surface the pipelines write through.
type Provider interface {
	// Save uploads data under the given object name.
	Save(ctx context.Context, objectName string, data []byte) error
	// Close releases any underlying client resources.
	Close() error
}

// NoopProvider discards everything. It is the default when archiving is not
// configured.
type NoopProvider struct{}

func (NoopProvider) Save(context.Context, string, []byte) error { return nil }

func (NoopProvider) Close() error { return nil }
