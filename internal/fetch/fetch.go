// Package fetch provides the HTTP layer shared by the pipeline: a
// colly-backed fetcher with per-domain rate limiting and optional robots.txt
// enforcement, plus an optional headless renderer for reference pages that
// need JavaScript.
package fetch

import (
	"context"
	"errors"
	"net/http"
)

// ErrRobotsDisallowed indicates the target host's robots.txt forbids the URL.
var ErrRobotsDisallowed = errors.New("robots disallowed")

// Page is the result of fetching one URL.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Rendered   bool
}

// Fetcher retrieves a URL over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Renderer retrieves a URL with JavaScript executed.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (Page, error)
	Close(ctx context.Context) error
}

// Detector decides whether a statically fetched page needs JS rendering.
type Detector interface {
	NeedsJS(ctx context.Context, page Page) bool
}

// RobotsPolicy reports whether a URL may be fetched.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}
