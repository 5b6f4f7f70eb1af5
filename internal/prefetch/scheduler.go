package prefetch

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"radar-prefetch/internal/tile"
)

// BatchFunc receives an enumerated batch of tile URLs to warm
type BatchFunc func(urls []string)

// Scheduler reacts to viewport and frame-window changes by enumerating the
// needed tile set and handing it to the batch runner. Calls are debounced:
// rapid re-scheduling replaces the pending execution, so only the most
// recent (viewport, frames) pair ever fires.
type Scheduler struct {
	src        tile.Source
	zoomSpread []int
	radius     int
	run        BatchFunc
	debounced  func(func())

	mu     sync.Mutex
	region tile.Region
	frames []int64
}

// NewScheduler creates a scheduler with the given debounce window
func NewScheduler(src tile.Source, zoomSpread []int, radius int, wait time.Duration, run BatchFunc) *Scheduler {
	return &Scheduler{
		src:        src,
		zoomSpread: zoomSpread,
		radius:     radius,
		run:        run,
		debounced:  debounce.New(wait),
	}
}

// Schedule records the latest (viewport, frames) pair and (re)starts the
// debounce timer. A call arriving within the debounce window of a previous
// one cancels that pending execution.
func (s *Scheduler) Schedule(region tile.Region, frames []int64) {
	s.mu.Lock()
	s.region = region
	s.frames = frames
	s.mu.Unlock()

	s.debounced(s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	region := s.region
	frames := s.frames
	s.mu.Unlock()

	if len(frames) == 0 {
		return
	}
	s.run(Plan(s.src, region, frames, s.zoomSpread, s.radius))
}
