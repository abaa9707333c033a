package fetch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/config"
)

// Client pairs the static fetcher with the optional headless renderer and
// the heuristic that decides when rendering is worth a browser tab.
type Client struct {
	fetcher  Fetcher
	renderer Renderer
	detector Detector
	logger   *zap.Logger
}

// NewClient builds the full fetch stack from configuration. The renderer is
// only constructed when the feature flag asks for it; a renderer that turns
// out to be disabled degrades to static fetches with a warning.
func NewClient(cfg config.FetchConfig, logger *zap.Logger) (*Client, error) {
	fetcher, err := NewCollyFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}
	client := &Client{fetcher: fetcher, logger: logger}

	if cfg.RenderJS {
		renderer, rerr := NewChromedpRenderer(cfg, logger)
		switch {
		case rerr == nil:
			client.renderer = renderer
			client.detector = NewHeuristicDetector(
				cfg.DetectorMinHTMLBytes,
				cfg.DetectorSelectorMust,
				cfg.DetectorKeywords,
			)
		case errors.Is(rerr, ErrRendererDisabled):
			logger.Warn("renderer disabled despite feature flag; using static fetches only")
		default:
			return nil, fmt.Errorf("init renderer: %w", rerr)
		}
	}
	return client, nil
}

// NewClientWith assembles a Client from explicit components. Intended for
// tests and callers that manage component lifecycles themselves.
func NewClientWith(fetcher Fetcher, renderer Renderer, detector Detector, logger *zap.Logger) *Client {
	return &Client{
		fetcher:  fetcher,
		renderer: renderer,
		detector: detector,
		logger:   logger,
	}
}

// Fetch retrieves a URL without render escalation. Used for API calls and
// binary downloads.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Page, error) {
	return c.fetcher.Fetch(ctx, rawURL)
}

// FetchPage retrieves an HTML page, escalating to the renderer when the
// detector flags the static body as script-dependent. A failed render falls
// back to the static page rather than failing the fetch.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	page, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Page{}, err
	}
	if c.renderer == nil || c.detector == nil || !c.detector.NeedsJS(ctx, page) {
		return page, nil
	}
	rendered, rerr := c.renderer.Render(ctx, rawURL)
	if rerr != nil {
		c.logger.Warn("render failed; using static page",
			zap.String("url", rawURL),
			zap.Error(rerr),
		)
		return page, nil
	}
	return rendered, nil
}

// Close releases renderer resources, if any.
func (c *Client) Close(ctx context.Context) error {
	if c.renderer != nil {
		return c.renderer.Close(ctx)
	}
	return nil
}
