package summary

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/archive"
	"github.com/fdadash/devicefeed/internal/config"
	"github.com/fdadash/devicefeed/internal/dataset"
	"github.com/fdadash/devicefeed/internal/fetch"
	"github.com/fdadash/devicefeed/internal/metrics"
)

// Fetcher is the retrieval surface the orchestrator needs: plain fetches for
// documents and render-capable fetches for reference pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Page, error)
	FetchPage(ctx context.Context, rawURL string) (fetch.Page, error)
}

// TextExtractor converts a downloaded PDF into plain text and names the
// engine that did the work.
type TextExtractor interface {
	Extract(ctx context.Context, pdfPath, textPath string) (string, error)
}

// Stats summarizes one orchestrator run.
type Stats struct {
	// Processed counts records that reached the download stage.
	Processed int
	// Extracted counts documents successfully converted to text.
	Extracted int
	// Failed counts documents that failed to download or extract.
	Failed int
}

// Orchestrator walks the dataset and materializes summary documents: one per
// record by default, or every ranked candidate in all-candidates mode.
type Orchestrator struct {
	fetcher   Fetcher
	extractor TextExtractor
	cache     *LinkCache
	archiver  archive.Provider
	cfg       config.SummariesConfig
	logger    *zap.Logger

	sleep func(context.Context, time.Duration)
}

func NewOrchestrator(fetcher Fetcher, extractor TextExtractor, linkCache *LinkCache, archiver archive.Provider, cfg config.SummariesConfig, logger *zap.Logger) *Orchestrator {
	if archiver == nil {
		archiver = archive.NoopProvider{}
	}
	return &Orchestrator{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     linkCache,
		archiver:  archiver,
		cfg:       cfg,
		logger:    logger,
		sleep:     fetch.Sleep,
	}
}

// Run processes records sequentially. Records without an identifier and
// reference URL are skipped and do not count against the limit; neither do
// records whose page scan produced no candidates. Per-document failures are
// logged and skipped. Only cache persistence failures and cancellation abort
// the run.
func (o *Orchestrator) Run(ctx context.Context, records []dataset.Record) (Stats, error) {
	var stats Stats
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		id := strings.TrimSpace(record.SubmissionID)
		pageURL := strings.TrimSpace(record.SubmissionURL)
		if id == "" || pageURL == "" {
			continue
		}

		if o.cfg.Limit > 0 && stats.Processed >= o.cfg.Limit {
			break
		}

		links, found := o.cache.Get(id)
		if !found || o.cfg.Force {
			var err error
			if links, err = o.discover(ctx, id, pageURL); err != nil {
				return stats, err
			}
		}

		if len(links) == 0 {
			continue
		}

		toDownload := links
		if !o.cfg.All {
			toDownload = links[:1]
		}

		for i, pdfURL := range toDownload {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			suffix := ""
			if o.cfg.All {
				suffix = fmt.Sprintf("-%d", i+1)
			}
			pdfPath := filepath.Join(o.cfg.PDFDir, id+suffix+".pdf")
			textPath := filepath.Join(o.cfg.TextDir, id+suffix+".txt")

			if !o.cfg.Force {
				if _, err := os.Stat(textPath); err == nil {
					continue
				}
			}

			if err := o.processDocument(ctx, id, pdfURL, pdfPath, textPath); err != nil {
				stats.Failed++
				metrics.ObserveDocument("failed")
				o.logger.Warn("summary document failed",
					zap.String("id", id),
					zap.String("url", pdfURL),
					zap.Error(err))
			} else {
				stats.Extracted++
				metrics.ObserveDocument("ok")
			}
			o.sleep(ctx, o.cfg.Throttle)
		}

		stats.Processed++
	}

	o.logger.Info("summary extraction complete",
		zap.Int("processed", stats.Processed),
		zap.Int("extracted", stats.Extracted),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// discover fetches the reference page, ranks its PDF links and persists the
// result. A fetch failure records an empty entry so the page is not retried
// on every run; only cache persistence failures propagate.
func (o *Orchestrator) discover(ctx context.Context, id, pageURL string) ([]string, error) {
	page, err := o.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		metrics.ObservePageFetch("failed")
		o.logger.Warn("reference page fetch failed",
			zap.String("id", id),
			zap.String("url", pageURL),
			zap.Error(err))
		o.cache.Put(id, nil)
		if err := o.cache.Flush(); err != nil {
			return nil, fmt.Errorf("persist link cache: %w", err)
		}
		return nil, nil
	}
	metrics.ObservePageFetch("ok")

	base := page.FinalURL
	if base == "" {
		base = pageURL
	}
	candidates, err := DiscoverPDFLinks(page.Body, base)
	if err != nil {
		// An unusable page is recorded as an empty scan, same as a fetch
		// failure.
		o.logger.Warn("reference page parse failed", zap.String("id", id), zap.Error(err))
		candidates = nil
	}

	ranked := Rank(candidates)
	links := make([]string, 0, len(ranked))
	for _, c := range ranked {
		links = append(links, c.URL)
	}

	o.cache.Put(id, links)
	if err := o.cache.Flush(); err != nil {
		return nil, fmt.Errorf("persist link cache: %w", err)
	}
	o.sleep(ctx, o.cfg.Throttle)
	return links, nil
}

func (o *Orchestrator) processDocument(ctx context.Context, id, pdfURL, pdfPath, textPath string) error {
	if err := o.ensurePDF(ctx, pdfURL, pdfPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(textPath), 0o750); err != nil {
		return fmt.Errorf("create text dir: %w", err)
	}

	engine, err := o.extractor.Extract(ctx, pdfPath, textPath)
	if engine == "" {
		engine = "none"
	}
	if err != nil {
		metrics.ObserveExtraction(engine, "failed")
		return fmt.Errorf("extract: %w", err)
	}
	metrics.ObserveExtraction(engine, "ok")

	var size int64
	if info, err := os.Stat(textPath); err == nil {
		size = info.Size()
	}
	o.logger.Info("summary extracted",
		zap.String("id", id),
		zap.String("engine", engine),
		zap.Int64("bytes", size))

	if data, err := os.ReadFile(textPath); err == nil {
		objectName := path.Join("summary-text", filepath.Base(textPath))
		if err := o.archiver.Save(ctx, objectName, data); err != nil {
			o.logger.Warn("archive upload failed", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}

// ensurePDF downloads the document unless a prior run already has it.
func (o *Orchestrator) ensurePDF(ctx context.Context, pdfURL, pdfPath string) error {
	if !o.cfg.Force {
		if _, err := os.Stat(pdfPath); err == nil {
			return nil
		}
	}

	page, err := o.fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o750); err != nil {
		return err
	}
	return os.WriteFile(pdfPath, page.Body, 0o600)
}
