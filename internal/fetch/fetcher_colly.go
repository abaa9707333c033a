package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/config"
)

// CollyFetcher implements Fetcher using the Colly collector. Politeness
// (robots.txt, per-domain rate limiting) is applied here so every call site
// gets it without extra wiring.
type CollyFetcher struct {
	baseCollector *colly.Collector
	limiter       *DomainLimiter
	robots        RobotsPolicy
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg config.FetchConfig, logger *zap.Logger) (*CollyFetcher, error) {
	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &CollyFetcher{
		baseCollector: base,
		limiter:       NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		robots:        NewRobotsEnforcer(cfg.RespectRobots, cfg.UserAgent, logger),
		logger:        logger,
	}, nil
}

// Fetch retrieves a URL via a cloned collector. Responses with error status
// codes surface as errors, never as pages.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if !f.robots.Allowed(ctx, rawURL) {
		return Page{}, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
	}
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return Page{}, err
	}

	collector := f.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				headers[k] = cp
			}
		}
		page := Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte{}, r.Body...),
		}
		send(fetchResult{page: page})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		if r != nil && r.StatusCode != 0 {
			err = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{}, fmt.Errorf("visit %s: %w", rawURL, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		return res.page, res.err
	default:
		return Page{}, errors.New("colly fetch produced no result")
	}
}

type fetchResult struct {
	page Page
	err  error
}
