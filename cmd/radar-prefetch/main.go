package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/posthog/posthog-go"

	httpapi "radar-prefetch/internal/api/http"
	"radar-prefetch/internal/cache"
	"radar-prefetch/internal/config"
	"radar-prefetch/internal/frames"
	"radar-prefetch/internal/imagery"
	"radar-prefetch/internal/radar"
	"radar-prefetch/internal/tile"
)

func main() {
	settings, err := config.Load(os.Getenv("RADAR_SETTINGS_PATH"))
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	src := tile.Source{
		Host:        settings.TileHost,
		Size:        settings.TileSize,
		ColorScheme: settings.ColorScheme,
		Smoothing:   settings.Smoothing,
		MaxZoom:     settings.MaxNativeZoom,
	}

	prefetcher := imagery.NewPrefetcher(settings.FetchTimeout(), imagery.BackoffConfig{
		MaxRetries:      settings.FetchMaxRetries,
		InitialInterval: time.Duration(settings.FetchBackoffMS) * time.Millisecond,
		MaxInterval:     time.Duration(settings.FetchBackoffMaxMS) * time.Millisecond,
	})

	fetchCache, err := cache.NewFetchCache(settings.CacheCapacity, prefetcher)
	if err != nil {
		log.Fatalf("failed to create fetch cache: %v", err)
	}

	lister := frames.NewClient(settings.FrameListURL, settings.FetchTimeout())

	// Optional telemetry, enabled only when a key is configured.
	var phClient posthog.Client
	if key := os.Getenv("POSTHOG_API_KEY"); key != "" {
		client, err := posthog.NewWithConfig(key, posthog.Config{
			Endpoint: getenvDefault("POSTHOG_HOST", "https://us.i.posthog.com"),
		})
		if err != nil {
			log.Printf("Failed to initialize PostHog: %v", err)
		} else {
			phClient = client
			defer phClient.Close()
		}
	}

	ctrl := radar.NewController(radar.Options{
		Source:             src,
		Lister:             lister,
		Cache:              fetchCache,
		ZoomSpread:         settings.ZoomSpread,
		NeighborRadius:     settings.NeighborRadius,
		Concurrency:        settings.Concurrency,
		Debounce:           settings.Debounce(),
		WindowSpan:         settings.WindowSpan(),
		MaxCachedFrames:    settings.MaxCachedFrames,
		RefreshInterval:    settings.RefreshInterval(),
		WarmStartThreshold: settings.WarmStartThreshold,
		PlaybackInterval:   settings.PlaybackInterval(),
		OnStateChange:      trackTransitions(phClient),
	})
	if err := ctrl.Start(); err != nil {
		log.Fatalf("failed to start controller: %v", err)
	}
	defer ctrl.Close()

	app := fiber.New(fiber.Config{
		AppName:               "radar-prefetch",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "radar-prefetch",
		})
	})

	httpapi.RegisterRoutes(app, ctrl)

	go func() {
		log.Printf("[Main] Listening on :%s", settings.Port)
		if err := app.Listen(":" + settings.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// trackTransitions emits telemetry on playback starts and warm completions
func trackTransitions(phClient posthog.Client) func(radar.State) {
	if phClient == nil {
		return nil
	}

	var mu sync.Mutex
	var last radar.State

	return func(st radar.State) {
		mu.Lock()
		prev := last
		last = st
		mu.Unlock()

		if st.IsPlaying && !prev.IsPlaying {
			phClient.Enqueue(posthog.Capture{
				DistinctId: "radar-prefetch",
				Event:      "playback_started",
				Properties: map[string]interface{}{
					"windowSize":   st.WindowSize,
					"warmProgress": st.WarmProgress,
				},
			})
		}
		if !st.Warming && prev.Warming {
			phClient.Enqueue(posthog.Capture{
				DistinctId: "radar-prefetch",
				Event:      "warm_completed",
				Properties: map[string]interface{}{
					"windowSize": st.WindowSize,
				},
			})
		}
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
