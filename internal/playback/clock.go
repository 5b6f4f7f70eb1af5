package playback

import (
	"sync"
	"time"
)

// Clock is the playback timer: while running, a fixed-period tick advances
// the animation one frame. An interval ticker, not a recursive schedule, so
// no missed-tick backlog accumulates.
type Clock struct {
	period time.Duration
	onTick func()

	mu   sync.Mutex
	stop chan struct{} // nil while stopped
}

// NewClock creates a stopped clock firing onTick every period
func NewClock(period time.Duration, onTick func()) *Clock {
	return &Clock{period: period, onTick: onTick}
}

// Start begins ticking; no-op if already running
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return
	}
	stop := make(chan struct{})
	c.stop = stop

	go func() {
		ticker := time.NewTicker(c.period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.onTick()
			}
		}
	}()
}

// Stop cancels the ticker; no-op if already stopped
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
}

// Running reports whether the clock is ticking
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}
