package radar

import (
	"context"
	"log"
	"sync"
	"time"

	"radar-prefetch/internal/cache"
	"radar-prefetch/internal/frames"
	"radar-prefetch/internal/playback"
	"radar-prefetch/internal/prefetch"
	"radar-prefetch/internal/taskqueue"
	"radar-prefetch/internal/tile"
)

// FrameLister provides the available radar snapshot timestamps
type FrameLister interface {
	FetchFrames(ctx context.Context) ([]int64, error)
}

// Options configures a Controller
type Options struct {
	Source tile.Source
	Lister FrameLister
	Cache  *cache.FetchCache

	ZoomSpread     []int
	NeighborRadius int
	Concurrency    int
	Debounce       time.Duration

	WindowSpan      time.Duration
	MaxCachedFrames int
	RefreshInterval time.Duration

	WarmStartThreshold float64
	PlaybackInterval   time.Duration

	// Now overrides the wall clock, used by tests
	Now func() time.Time
	// OnStateChange observes every state transition. Called outside the
	// controller lock; safe to call back into the controller.
	OnStateChange func(State)
}

// Controller owns one map screen's radar overlay lifecycle: the frame
// timeline, the debounced viewport prefetch, the desired-to-active frame
// handoff, the warm-up gate, and the playback clock.
type Controller struct {
	src        tile.Source
	lister     FrameLister
	cache      *cache.FetchCache
	zoomSpread []int
	radius     int
	workers    int
	warmAt     float64
	now        func() time.Time
	onState    func(State)

	timeline  *frames.Timeline
	sched     *prefetch.Scheduler
	clock     *playback.Clock
	refresher *frames.Refresher

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	region       tile.Region
	hasRegion    bool
	desired      int64
	active       int64
	loading      bool
	warming      bool
	warmProgress float64
	playing      bool
	lastWarmed   prefetch.Signature
	handoffGen   int64
	warmGen      int64
}

// NewController wires the prefetch core together. Call Start to begin
// frame refreshes and Close to tear everything down.
func NewController(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		src:        opts.Source,
		lister:     opts.Lister,
		cache:      opts.Cache,
		zoomSpread: opts.ZoomSpread,
		radius:     opts.NeighborRadius,
		workers:    opts.Concurrency,
		warmAt:     opts.WarmStartThreshold,
		now:        opts.Now,
		onState:    opts.OnStateChange,
		timeline:   frames.NewTimeline(opts.WindowSpan, opts.MaxCachedFrames),
		ctx:        ctx,
		cancel:     cancel,
	}

	c.sched = prefetch.NewScheduler(opts.Source, opts.ZoomSpread, opts.NeighborRadius, opts.Debounce, c.runBatch)
	c.clock = playback.NewClock(opts.PlaybackInterval, c.tick)
	c.refresher = frames.NewRefresher(opts.RefreshInterval, c.RefreshFrames)

	return c
}

// Start begins the periodic frame-list refresh (the first refresh runs
// immediately)
func (c *Controller) Start() error {
	return c.refresher.Start()
}

// Close tears down the screen session: refresher, playback clock, and any
// in-flight batches
func (c *Controller) Close() {
	c.refresher.Stop()
	c.clock.Stop()
	c.cancel()

	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()

	log.Printf("[Radar] Controller closed")
}

// Snapshot returns the current UI state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Cache returns fetch-cache statistics
func (c *Controller) Cache() CacheStats {
	hits, misses, failures, entries := c.cache.Stats()
	return CacheStats{Hits: hits, Misses: misses, Failures: failures, Entries: entries}
}

// RefreshFrames fetches the frame list once and folds it into the
// timeline. Provider failure keeps the previous frame set; the next
// periodic refresh is the only retry.
func (c *Controller) RefreshFrames() {
	list, err := c.lister.FetchFrames(c.ctx)
	if err != nil {
		log.Printf("[Radar] Frame refresh failed, keeping previous frames: %v", err)
		return
	}

	c.mu.Lock()
	now := c.now()
	hadDesired := c.desired != 0
	c.timeline.SetFrames(list, now)
	window := c.timeline.Window(now)

	// The window shifting can retire the selected frame or leave too
	// little to animate.
	if len(window) < 2 && c.playing {
		c.stopPlaybackLocked()
	}
	selected := c.timeline.Reclamp(now)
	if selected != 0 && (!hadDesired || selected != c.desired) {
		c.setDesiredLocked(selected)
	}

	region, hasRegion := c.region, c.hasRegion
	st := c.stateLocked()
	c.mu.Unlock()

	if hasRegion && len(window) > 0 {
		c.sched.Schedule(region, window)
	}
	c.notify(st)
}

// SetRegion accepts a viewport change from the map surface and re-schedules
// the window prefetch against it
func (c *Controller) SetRegion(region tile.Region) {
	c.mu.Lock()
	c.region = region
	c.hasRegion = true
	window := c.timeline.Window(c.now())
	c.mu.Unlock()

	if len(window) > 0 {
		c.sched.Schedule(region, window)
	}
}

// SchedulePrefetch re-runs the debounced window prefetch for the current
// viewport, e.g. after an external cache flush
func (c *Controller) SchedulePrefetch() {
	c.mu.Lock()
	region, hasRegion := c.region, c.hasRegion
	window := c.timeline.Window(c.now())
	c.mu.Unlock()

	if hasRegion && len(window) > 0 {
		c.sched.Schedule(region, window)
	}
}

// SetFrameIndex commits a slider selection. Manual selection always stops
// playback.
func (c *Controller) SetFrameIndex(i int) {
	c.mu.Lock()
	if c.playing {
		c.stopPlaybackLocked()
	}
	c.timeline.ClearPending()
	ts := c.timeline.SetIndex(i, c.now())
	if ts != 0 && ts != c.desired {
		c.setDesiredLocked(ts)
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// SetPendingIndex records an in-progress slider drag position, used only
// for the frame-time label until the drag commits. Grabbing the slider
// stops playback so the clock cannot advance the frame mid-drag.
func (c *Controller) SetPendingIndex(i int) {
	c.mu.Lock()
	if c.playing {
		c.stopPlaybackLocked()
	}
	c.timeline.SetPending(i)
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// SetIsPlaying toggles playback. Starting runs the warm-up gate first: an
// unchanged (viewport, frame window) signature makes this a pure toggle,
// anything else warms the whole window before the clock starts.
func (c *Controller) SetIsPlaying(playing bool) {
	c.mu.Lock()

	if !playing {
		c.warmGen++ // abandons any in-flight warm pass
		c.warming = false
		c.stopPlaybackLocked()
		st := c.stateLocked()
		c.mu.Unlock()
		c.notify(st)
		return
	}

	now := c.now()
	window := c.timeline.Window(now)
	if len(window) < 2 {
		c.mu.Unlock()
		return
	}

	if !c.hasRegion {
		// Nothing to warm against; play immediately.
		c.startPlaybackLocked()
		st := c.stateLocked()
		c.mu.Unlock()
		c.notify(st)
		return
	}

	sig := prefetch.NewSignature(c.src, c.region, window)
	if sig == c.lastWarmed {
		c.startPlaybackLocked()
		st := c.stateLocked()
		c.mu.Unlock()
		c.notify(st)
		return
	}

	// Viewport or window changed since the last warm: stop and re-warm.
	c.stopPlaybackLocked()
	c.warming = true
	c.warmProgress = 0
	c.warmGen++
	gen := c.warmGen
	region := c.region
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)

	go c.warm(gen, sig, region, window)
}

// warm prefetches the entire frame window, auto-starting playback once
// progress crosses the threshold while the remaining tiles finish in the
// background
func (c *Controller) warm(gen int64, sig prefetch.Signature, region tile.Region, window []int64) {
	urls := prefetch.Plan(c.src, region, window, c.zoomSpread, c.radius)
	log.Printf("[Radar] Warming %d frames (%d tiles)", len(window), len(urls))

	tasks := c.fetchTasks(urls)
	taskqueue.Run(c.ctx, tasks, c.workers, func(done, total int) {
		frac := float64(done) / float64(total)

		c.mu.Lock()
		if c.warmGen != gen {
			c.mu.Unlock()
			return
		}
		c.warmProgress = frac
		started := false
		if !c.playing && frac >= c.warmAt {
			c.startPlaybackLocked()
			started = true
		}
		st := c.stateLocked()
		c.mu.Unlock()

		if started {
			log.Printf("[Radar] Playback auto-started at %.0f%% warm", frac*100)
		}
		c.notify(st)
	})

	c.mu.Lock()
	if c.warmGen != gen {
		c.mu.Unlock()
		return
	}
	c.warming = false
	c.lastWarmed = sig
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// tick advances playback one frame
func (c *Controller) tick() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	ts := c.timeline.Advance(c.now())
	if ts == 0 {
		c.stopPlaybackLocked()
		st := c.stateLocked()
		c.mu.Unlock()
		c.notify(st)
		return
	}
	if ts != c.desired {
		c.setDesiredLocked(ts)
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// setDesiredLocked moves the desired timestamp and kicks off the
// desired-to-active handoff: the active (rendered) timestamp only follows
// once the desired frame's tile neighborhood has been attempted
func (c *Controller) setDesiredLocked(ts int64) {
	c.desired = ts

	if !c.hasRegion {
		// Nothing to prefetch against yet.
		c.active = ts
		return
	}

	c.loading = true
	c.handoffGen++
	gen := c.handoffGen
	region := c.region

	go func() {
		urls := prefetch.Plan(c.src, region, []int64{ts}, c.zoomSpread, c.radius)
		taskqueue.Run(c.ctx, c.fetchTasks(urls), c.workers, nil)

		c.mu.Lock()
		if c.handoffGen != gen {
			// A newer selection superseded this handoff.
			c.mu.Unlock()
			return
		}
		c.active = ts
		c.loading = false
		st := c.stateLocked()
		c.mu.Unlock()
		c.notify(st)
	}()
}

// runBatch is the scheduler's sink: warm the enumerated URLs through the
// fetch cache. Results are cache population only; failures stay eligible
// for retry on a later pass.
func (c *Controller) runBatch(urls []string) {
	taskqueue.Run(c.ctx, c.fetchTasks(urls), c.workers, nil)
}

func (c *Controller) fetchTasks(urls []string) []taskqueue.Task {
	tasks := make([]taskqueue.Task, len(urls))
	for i, url := range urls {
		url := url
		tasks[i] = func(ctx context.Context) error {
			c.cache.EnsureFetched(ctx, url)
			return nil
		}
	}
	return tasks
}

func (c *Controller) startPlaybackLocked() {
	c.playing = true
	c.clock.Start()
}

func (c *Controller) stopPlaybackLocked() {
	c.playing = false
	c.clock.Stop()
}

func (c *Controller) stateLocked() State {
	return State{
		ActiveTimestamp:  c.active,
		DesiredTimestamp: c.desired,
		FrameIndex:       c.timeline.Index(),
		PendingIndex:     c.timeline.Pending(),
		WindowSize:       len(c.timeline.Window(c.now())),
		IsLoadingFrame:   c.loading,
		Warming:          c.warming,
		WarmProgress:     c.warmProgress,
		IsPlaying:        c.playing,
	}
}

func (c *Controller) notify(st State) {
	if c.onState != nil {
		c.onState(st)
	}
}
