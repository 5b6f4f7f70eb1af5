package frames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// User agent sent with frame-list requests
	UserAgent = "radar-prefetch/1.0"
)

var (
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Entry is one snapshot in the provider payload. Entries with a missing or
// non-positive time are malformed and filtered out.
type Entry struct {
	Time int64  `json:"time"`
	Path string `json:"path"`
}

// mapsResponse models the frame-list provider payload: past snapshots plus
// a short nowcast of near-future ones
type mapsResponse struct {
	Radar struct {
		Past    []Entry `json:"past"`
		Nowcast []Entry `json:"nowcast"`
	} `json:"radar"`
}

// Client fetches the list of available radar snapshot timestamps.
// A circuit breaker stops polling a flapping provider for a cool-down;
// callers keep their previous frame list on any failure.
type Client struct {
	url        string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a frame-list client for the given provider URL
func NewClient(url string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "frame-list",
		MaxRequests: 2,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		circuit: cb,
	}
}

// FetchFrames returns all available snapshot timestamps, past and nowcast
// merged, ascending. Distinct provider-issued timestamps mean the merge
// needs no explicit deduplication.
func (c *Client) FetchFrames(ctx context.Context) ([]int64, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}
	return result.([]int64), nil
}

func (c *Client) fetch(ctx context.Context) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frame list fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	var payload mapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse frame list: %w", err)
	}

	return MergeFrames(payload.Radar.Past, payload.Radar.Nowcast), nil
}

// MergeFrames merges past and nowcast entries into one ascending timestamp
// slice, dropping malformed entries
func MergeFrames(past, nowcast []Entry) []int64 {
	out := make([]int64, 0, len(past)+len(nowcast))
	for _, e := range past {
		if e.Time > 0 {
			out = append(out, e.Time)
		}
	}
	for _, e := range nowcast {
		if e.Time > 0 {
			out = append(out, e.Time)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
