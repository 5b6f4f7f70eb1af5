package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"radar-prefetch/internal/cache"
	"radar-prefetch/internal/radar"
	"radar-prefetch/internal/tile"
)

type nopFetcher struct{}

func (nopFetcher) Prefetch(ctx context.Context, url string) error { return nil }

type staticLister struct{ frames []int64 }

func (s staticLister) FetchFrames(ctx context.Context) ([]int64, error) {
	return s.frames, nil
}

func newTestApp(t *testing.T) (*fiber.App, *radar.Controller) {
	t.Helper()
	fc, err := cache.NewFetchCache(64, nopFetcher{})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	ctrl := radar.NewController(radar.Options{
		Source: tile.Source{
			Host:        "https://radar.example.com/v2/radar",
			Size:        256,
			ColorScheme: 4,
			Smoothing:   1,
			MaxZoom:     10,
		},
		Lister:             staticLister{frames: []int64{1000, 1010, 1020}},
		Cache:              fc,
		ZoomSpread:         []int{0, -1},
		NeighborRadius:     1,
		Concurrency:        4,
		Debounce:           time.Hour,
		WindowSpan:         2 * time.Hour,
		MaxCachedFrames:    18,
		RefreshInterval:    time.Hour,
		WarmStartThreshold: 0.85,
		PlaybackInterval:   time.Hour,
		Now:                func() time.Time { return time.Unix(1020, 0) },
	})
	t.Cleanup(ctrl.Close)
	ctrl.RefreshFrames()

	app := fiber.New()
	RegisterRoutes(app, ctrl)
	return app, ctrl
}

func TestStatusEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		State radar.State      `json:"state"`
		Cache radar.CacheStats `json:"cache"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.State.WindowSize != 3 {
		t.Errorf("window size = %d, want 3", body.State.WindowSize)
	}
	if body.State.ActiveTimestamp != 1020 {
		t.Errorf("active = %d, want 1020", body.State.ActiveTimestamp)
	}
}

func TestViewportValidation(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/viewport",
		strings.NewReader(`{"centerLat": 29.6, "centerLon": -82.3, "latSpan": 0, "lonSpan": 0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestFrameEndpoint(t *testing.T) {
	app, ctrl := newTestApp(t)

	// Missing index is rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/frame", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/frame", strings.NewReader(`{"index": 0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := ctrl.Snapshot().FrameIndex; got != 0 {
		t.Errorf("frame index = %d, want 0", got)
	}
}

func TestPlayEndpointWithTooFewFrames(t *testing.T) {
	fc, _ := cache.NewFetchCache(64, nopFetcher{})
	ctrl := radar.NewController(radar.Options{
		Source:             tile.Source{Host: "https://h", Size: 256, MaxZoom: 10},
		Lister:             staticLister{frames: []int64{1020}},
		Cache:              fc,
		ZoomSpread:         []int{0},
		NeighborRadius:     1,
		Concurrency:        4,
		Debounce:           time.Hour,
		WindowSpan:         2 * time.Hour,
		MaxCachedFrames:    18,
		RefreshInterval:    time.Hour,
		WarmStartThreshold: 0.85,
		PlaybackInterval:   time.Hour,
		Now:                func() time.Time { return time.Unix(1020, 0) },
	})
	t.Cleanup(ctrl.Close)
	ctrl.RefreshFrames()

	app := fiber.New()
	RegisterRoutes(app, ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/play", strings.NewReader(`{"playing": true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var st radar.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if st.IsPlaying {
		t.Error("a single-frame window has nothing to animate")
	}
}
