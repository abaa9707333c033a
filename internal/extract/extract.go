// Package extract turns downloaded PDF documents into plain text. It prefers
// the poppler pdftotext binary for layout fidelity and falls back to a
// pure-Go reader when the binary is not installed.
package extract

import (
	"context"
	"errors"
)

// Engine is one way of converting a PDF into text.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string
	// Available reports whether the engine can run on this host.
	Available() bool
	// Extract writes the text form of pdfPath to textPath.
	Extract(ctx context.Context, pdfPath, textPath string) error
}

// Extractor tries engines in order. The first available engine does the
// work and its verdict is final; a later engine is only consulted when an
// earlier one cannot run at all.
type Extractor struct {
	engines []Engine
}

func NewExtractor(engines ...Engine) *Extractor {
	if len(engines) == 0 {
		engines = []Engine{NewPdftotextEngine(), NewBuiltinEngine()}
	}
	return &Extractor{engines: engines}
}

// Extract converts one document and reports which engine did the work.
func (e *Extractor) Extract(ctx context.Context, pdfPath, textPath string) (string, error) {
	for _, engine := range e.engines {
		if !engine.Available() {
			continue
		}
		if err := engine.Extract(ctx, pdfPath, textPath); err != nil {
			return engine.Name(), err
		}
		return engine.Name(), nil
	}
	return "", errors.New("no PDF text extractor available")
}
