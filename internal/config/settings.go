package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds every tunable of the prefetch core. Values are defaults
// merged with an optional JSON settings file, then environment overrides.
type Settings struct {
	// Tile source
	TileHost      string `json:"tileHost"`
	TileSize      int    `json:"tileSize"` // 256 or 512
	ColorScheme   int    `json:"colorScheme"`
	Smoothing     int    `json:"smoothing"`
	MaxNativeZoom int    `json:"maxNativeZoom"`

	// Frame list provider
	FrameListURL       string `json:"frameListURL"`
	RefreshIntervalSec int    `json:"refreshIntervalSec"`

	// Frame window
	WindowSpanMin   int `json:"windowSpanMin"`
	MaxCachedFrames int `json:"maxCachedFrames"`

	// Prefetch shape
	NeighborRadius int   `json:"neighborRadius"`
	ZoomSpread     []int `json:"zoomSpread"`
	DebounceMS     int   `json:"debounceMS"`
	Concurrency    int   `json:"concurrency"`

	// Playback
	WarmStartThreshold float64 `json:"warmStartThreshold"`
	PlaybackIntervalMS int     `json:"playbackIntervalMS"`

	// Fetch cache and retry policy
	CacheCapacity     int `json:"cacheCapacity"`
	FetchTimeoutSec   int `json:"fetchTimeoutSec"`
	FetchMaxRetries   int `json:"fetchMaxRetries"`
	FetchBackoffMS    int `json:"fetchBackoffMS"`
	FetchBackoffMaxMS int `json:"fetchBackoffMaxMS"`

	// Control surface
	Port string `json:"port"`
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	return &Settings{
		TileHost:           "https://tilecache.rainviewer.com/v2/radar",
		TileSize:           256,
		ColorScheme:        4,
		Smoothing:          1,
		MaxNativeZoom:      10,
		FrameListURL:       "https://api.rainviewer.com/public/weather-maps.json",
		RefreshIntervalSec: 180,
		WindowSpanMin:      120,
		MaxCachedFrames:    18,
		NeighborRadius:     1,
		ZoomSpread:         []int{0, -1},
		DebounceMS:         150,
		Concurrency:        8,
		WarmStartThreshold: 0.85,
		PlaybackIntervalMS: 2500,
		CacheCapacity:      8192,
		FetchTimeoutSec:    10,
		FetchMaxRetries:    0,
		FetchBackoffMS:     500,
		FetchBackoffMaxMS:  5000,
		Port:               "8080",
	}
}

// Load reads settings from the optional JSON file at path, merged over
// defaults, then applies environment overrides (a .env file is honored
// when present)
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read settings file: %w", err)
			}
			// Decoding over the prefilled struct only touches keys the
			// file actually sets, so explicit zeros stick while absent
			// keys keep their defaults.
			if err := json.Unmarshal(data, settings); err != nil {
				return nil, fmt.Errorf("failed to parse settings: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] No .env file loaded: %v", err)
	}
	if host := os.Getenv("RADAR_TILE_HOST"); host != "" {
		settings.TileHost = host
	}
	if url := os.Getenv("RADAR_FRAME_LIST_URL"); url != "" {
		settings.FrameListURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		settings.Port = port
	}

	return settings, nil
}

// RefreshInterval returns the frame-list refresh interval as a duration
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalSec) * time.Second
}

// WindowSpan returns the trailing frame-window span as a duration
func (s *Settings) WindowSpan() time.Duration {
	return time.Duration(s.WindowSpanMin) * time.Minute
}

// Debounce returns the prefetch debounce window as a duration
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// PlaybackInterval returns the playback tick period as a duration
func (s *Settings) PlaybackInterval() time.Duration {
	return time.Duration(s.PlaybackIntervalMS) * time.Millisecond
}

// FetchTimeout returns the per-tile fetch timeout as a duration
func (s *Settings) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSec) * time.Second
}
