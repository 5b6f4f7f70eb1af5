package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defaults := DefaultSettings()
	if s.TileHost != defaults.TileHost {
		t.Errorf("tile host = %q, want default %q", s.TileHost, defaults.TileHost)
	}
	if s.MaxCachedFrames != 18 || s.NeighborRadius != 1 || s.DebounceMS != 150 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if len(s.ZoomSpread) != 2 || s.ZoomSpread[0] != 0 || s.ZoomSpread[1] != -1 {
		t.Errorf("zoom spread = %v, want [0 -1]", s.ZoomSpread)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{
		"tileHost": "https://tiles.example.com/radar",
		"concurrency": 4,
		"maxCachedFrames": 12
	}`), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TileHost != "https://tiles.example.com/radar" {
		t.Errorf("tile host = %q", s.TileHost)
	}
	if s.Concurrency != 4 || s.MaxCachedFrames != 12 {
		t.Errorf("file values not applied: %+v", s)
	}
	// Untouched fields keep their defaults.
	if s.DebounceMS != 150 || s.PlaybackIntervalMS != 2500 {
		t.Errorf("defaults lost in merge: %+v", s)
	}
}

func TestLoadKeepsExplicitZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{
		"warmStartThreshold": 0,
		"debounceMS": 0,
		"smoothing": 0
	}`), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.WarmStartThreshold != 0 {
		t.Errorf("explicit zero threshold became %v", s.WarmStartThreshold)
	}
	if s.DebounceMS != 0 {
		t.Errorf("explicit zero debounce became %d", s.DebounceMS)
	}
	if s.Smoothing != 0 {
		t.Errorf("explicit zero smoothing became %d", s.Smoothing)
	}
	// Keys the file does not mention keep their defaults.
	if s.Concurrency != 8 || s.TileSize != 256 {
		t.Errorf("absent keys lost their defaults: %+v", s)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed settings file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RADAR_TILE_HOST", "https://env.example.com/radar")
	t.Setenv("PORT", "9090")

	s, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TileHost != "https://env.example.com/radar" {
		t.Errorf("tile host = %q, want env override", s.TileHost)
	}
	if s.Port != "9090" {
		t.Errorf("port = %q, want 9090", s.Port)
	}
}

func TestDurationHelpers(t *testing.T) {
	s := DefaultSettings()
	if s.RefreshInterval().Minutes() != 3 {
		t.Errorf("refresh interval = %v, want 3m", s.RefreshInterval())
	}
	if s.WindowSpan().Hours() != 2 {
		t.Errorf("window span = %v, want 2h", s.WindowSpan())
	}
	if s.Debounce().Milliseconds() != 150 {
		t.Errorf("debounce = %v, want 150ms", s.Debounce())
	}
}
