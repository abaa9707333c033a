// Package openfda resolves device submission identifiers against the public
// openFDA device endpoints and caches the answers on disk so repeated runs
// only pay for identifiers they have never seen.
package openfda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/fetch"
	"github.com/fdadash/devicefeed/internal/metrics"
	"github.com/fdadash/devicefeed/internal/normalize"
)

const (
	endpoint510k = "https://api.fda.gov/device/510k.json"
	endpointPMA  = "https://api.fda.gov/device/pma.json"

	defaultRetries = 3
)

// Result is the enrichment outcome for one identifier. Empty date fields on
// a cached entry mean the service had no record for it.
type Result struct {
	ReceivedDate string `json:"received_date"`
	DecisionDate string `json:"decision_date_openfda"`
	Source       string `json:"source,omitempty"`
}

// Config tunes lookup pacing and retry behavior.
type Config struct {
	// Throttle is the fair-use delay after every successful network lookup.
	// It also seeds the linear backoff between retry attempts.
	Throttle time.Duration
	// Retries is the number of attempts per identifier.
	Retries int
}

// Client performs cached lookups against openFDA.
type Client struct {
	fetcher  fetch.Fetcher
	cache    *Cache
	throttle time.Duration
	retries  int
	logger   *zap.Logger

	sleep func(context.Context, time.Duration)
}

// NewClient builds a lookup client over the given fetcher and cache store.
func NewClient(fetcher fetch.Fetcher, store *Cache, cfg Config, logger *zap.Logger) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	return &Client{
		fetcher:  fetcher,
		cache:    store,
		throttle: cfg.Throttle,
		retries:  retries,
		logger:   logger,
		sleep:    fetch.Sleep,
	}
}

// Lookup resolves one submission identifier. Network and decode failures are
// retried with linear backoff and ultimately degrade to an empty result that
// is not cached, so the next run tries again. The returned error is reserved
// for cache persistence failures, which are not recoverable mid-run.
func (c *Client) Lookup(ctx context.Context, submissionID string) (Result, error) {
	if submissionID == "" {
		return Result{}, nil
	}
	id := strings.ToUpper(submissionID)

	if cached, ok := c.cache.Get(id); ok {
		metrics.ObserveLookup("cached")
		return cached, nil
	}

	var endpoint, queryField string
	switch {
	case strings.HasPrefix(id, "K"):
		endpoint, queryField = endpoint510k, "k_number"
	case strings.HasPrefix(id, "P"):
		endpoint, queryField = endpointPMA, "pma_number"
	default:
		// De Novo numbers have no queryable endpoint. Not cached, so a
		// future run revisits them.
		metrics.ObserveLookup("skipped")
		return Result{}, nil
	}

	lookupURL := fmt.Sprintf("%s?search=%s:%s&limit=1", endpoint, queryField, id)

	for attempt := 1; attempt <= c.retries; attempt++ {
		result, found, err := c.query(ctx, lookupURL, queryField)
		if err != nil {
			metrics.ObserveLookup("error")
			c.logger.Warn("openFDA lookup failed",
				zap.String("id", id),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if ctx.Err() != nil || attempt == c.retries {
				break
			}
			c.sleep(ctx, c.throttle*time.Duration(attempt))
			continue
		}

		if !found {
			// The service answered and has no record: a terminal result,
			// cached. The fair-use delay only follows calls that returned
			// data.
			entry := Result{Source: queryField}
			c.cache.Put(id, entry)
			if err := c.cache.Flush(); err != nil {
				return Result{}, fmt.Errorf("persist openFDA cache: %w", err)
			}
			metrics.ObserveLookup("no_data")
			return entry, nil
		}

		c.cache.Put(id, result)
		if err := c.cache.Flush(); err != nil {
			return Result{}, fmt.Errorf("persist openFDA cache: %w", err)
		}
		metrics.ObserveLookup("match")
		c.sleep(ctx, c.throttle)
		return result, nil
	}

	// All attempts failed. Not cached: an outage must not become a
	// permanent "no data" verdict for this identifier.
	return Result{}, nil
}

func (c *Client) query(ctx context.Context, lookupURL, queryField string) (Result, bool, error) {
	start := time.Now()
	page, err := c.fetcher.Fetch(ctx, lookupURL)
	if err != nil {
		return Result{}, false, fmt.Errorf("fetch: %w", err)
	}
	metrics.ObserveLookupDuration(time.Since(start))

	var payload struct {
		Results []struct {
			ReceivedDate string `json:"received_date"`
			DateReceived string `json:"date_received"`
			ReceiveDate  string `json:"receive_date"`
			DecisionDate string `json:"decision_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(page.Body, &payload); err != nil {
		return Result{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Results) == 0 {
		return Result{}, false, nil
	}

	rec := payload.Results[0]
	received := rec.ReceivedDate
	if received == "" {
		received = rec.DateReceived
	}
	if received == "" {
		received = rec.ReceiveDate
	}
	return Result{
		ReceivedDate: normalize.NormalizeDate(received),
		DecisionDate: normalize.NormalizeDate(rec.DecisionDate),
		Source:       queryField,
	}, true, nil
}
