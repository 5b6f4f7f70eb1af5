package frames

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher periodically re-fetches the frame list for the lifetime of a
// screen session
type Refresher struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       func()
}

// NewRefresher creates a refresher running job every interval
func NewRefresher(interval time.Duration, job func()) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		job:       job,
	}
}

// Start runs the job once immediately, then on every interval tick
func (r *Refresher) Start() error {
	_, err := r.scheduler.Every(r.interval).StartImmediately().Do(r.job)
	if err != nil {
		return err
	}
	r.scheduler.StartAsync()
	log.Printf("[Frames] Refresher started (every %s)", r.interval)
	return nil
}

// Stop cancels all future refreshes
func (r *Refresher) Stop() {
	r.scheduler.Stop()
	log.Printf("[Frames] Refresher stopped")
}
