package imagery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// User agent sent with every tile request
	UserAgent = "radar-prefetch/1.0"
)

// BackoffConfig controls retry behaviour for a failed tile fetch.
// MaxRetries of zero means a failed tile is retried only when a later
// scheduling pass happens to re-request the same URL.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Prefetcher downloads tile images into the HTTP layer's cache, reporting
// only success or failure. The body is drained and discarded; the point of
// the request is to warm the cache, not to hold pixels.
type Prefetcher struct {
	httpClient *http.Client
	backoff    BackoffConfig
}

// NewPrefetcher creates a prefetcher with system proxy support and an
// explicit per-request timeout so a stalled tile cannot hold a worker
// slot indefinitely
func NewPrefetcher(timeout time.Duration, backoff BackoffConfig) *Prefetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	return &Prefetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		backoff: backoff,
	}
}

// Prefetch fetches url once, plus up to MaxRetries attempts with
// exponential backoff on failure
func (p *Prefetcher) Prefetch(ctx context.Context, url string) error {
	var lastErr error
	interval := p.backoff.InitialInterval

	for attempt := 0; attempt <= p.backoff.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			interval *= 2
			if p.backoff.MaxInterval > 0 && interval > p.backoff.MaxInterval {
				interval = p.backoff.MaxInterval
			}
		}

		if lastErr = p.fetchOnce(ctx, url); lastErr == nil {
			return nil
		}
	}

	return lastErr
}

func (p *Prefetcher) fetchOnce(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("tile fetch returned status %d", resp.StatusCode)
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read tile body: %w", err)
	}

	return nil
}
