package frames

import (
	"sort"
	"time"
)

// Timeline maintains the ordered set of available radar snapshot
// timestamps, the bounded trailing window of them worth caching, and the
// committed frame selection within that window.
//
// Timeline is not safe for concurrent use; the owning controller
// serializes access.
type Timeline struct {
	windowSpan time.Duration
	maxCached  int

	frames []int64 // all known frames, ascending unix seconds

	index    int   // committed selection within Window
	pending  int   // transient slider position, -1 when no drag in progress
	selected int64 // timestamp backing index, so selection survives window shifts
	seeded   bool
}

// NewTimeline creates an empty timeline. windowSpan bounds how far back the
// cached window reaches; maxCached caps its frame count.
func NewTimeline(windowSpan time.Duration, maxCached int) *Timeline {
	return &Timeline{
		windowSpan: windowSpan,
		maxCached:  maxCached,
		pending:    -1,
	}
}

// SetFrames replaces the known frame set from a provider refresh. The first
// non-empty set seeds the selection to the frame closest to now; later
// refreshes keep the already-committed selection, re-clamped against the
// new window.
func (t *Timeline) SetFrames(frames []int64, now time.Time) {
	t.frames = frames

	window := t.Window(now)
	if len(window) == 0 {
		return
	}

	if !t.seeded {
		t.index = ClosestIndex(window, now.Unix())
		t.selected = window[t.index]
		t.seeded = true
		return
	}

	t.reclamp(window, now)
}

// Window returns the slice of frames within [now-windowSpan, now], capped
// to the most recent maxCached entries, ascending. Provider frame lists can
// carry forecast timestamps past now; those stay out of the window until
// the clock catches up to them.
func (t *Timeline) Window(now time.Time) []int64 {
	cutoff := now.Add(-t.windowSpan).Unix()
	start := sort.Search(len(t.frames), func(i int) bool { return t.frames[i] >= cutoff })
	end := start + sort.Search(len(t.frames)-start, func(i int) bool { return t.frames[start+i] > now.Unix() })
	window := t.frames[start:end]
	if t.maxCached > 0 && len(window) > t.maxCached {
		window = window[len(window)-t.maxCached:]
	}
	return window
}

// Index returns the committed frame selection
func (t *Timeline) Index() int {
	return t.index
}

// Pending returns the transient slider position, or -1 when no drag is in
// progress
func (t *Timeline) Pending() int {
	return t.pending
}

// SetPending records an uncommitted slider position used only for display
// labels while a drag is in progress
func (t *Timeline) SetPending(i int) {
	t.pending = i
}

// ClearPending ends a slider drag
func (t *Timeline) ClearPending() {
	t.pending = -1
}

// SetIndex commits a frame selection, clamped to the current window, and
// returns the selected timestamp. Returns 0 if the window is empty.
func (t *Timeline) SetIndex(i int, now time.Time) int64 {
	window := t.Window(now)
	if len(window) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(window) {
		i = len(window) - 1
	}
	t.index = i
	t.selected = window[i]
	t.seeded = true
	return t.selected
}

// Advance moves the selection forward one frame, wrapping to the start past
// the last index, and returns the selected timestamp. Returns 0 if the
// window is empty.
func (t *Timeline) Advance(now time.Time) int64 {
	window := t.Window(now)
	if len(window) == 0 {
		return 0
	}
	next := t.index + 1
	if next >= len(window) {
		next = 0
	}
	t.index = next
	t.selected = window[next]
	return t.selected
}

// Reclamp re-validates the selection after the window may have shifted and
// returns the selected timestamp (0 if the window is empty). The selection
// follows its timestamp when that frame is still present; a frame that aged
// out re-resolves to the frame closest to now.
func (t *Timeline) Reclamp(now time.Time) int64 {
	window := t.Window(now)
	if len(window) == 0 {
		return 0
	}
	t.reclamp(window, now)
	return t.selected
}

func (t *Timeline) reclamp(window []int64, now time.Time) {
	if i := sort.Search(len(window), func(j int) bool { return window[j] >= t.selected }); i < len(window) && window[i] == t.selected {
		t.index = i
		return
	}
	t.index = ClosestIndex(window, now.Unix())
	t.selected = window[t.index]
}

// ClosestIndex returns the index of the frame numerically closest to
// target. Exact midpoints resolve to the later frame: the binary search
// picks the lower-bound candidate first and only the strictly closer
// predecessor replaces it.
func ClosestIndex(sorted []int64, target int64) int {
	if len(sorted) == 0 {
		return 0
	}
	i := sort.Search(len(sorted), func(j int) bool { return sorted[j] >= target })
	if i == len(sorted) {
		return len(sorted) - 1
	}
	if i == 0 {
		return 0
	}
	if target-sorted[i-1] < sorted[i]-target {
		return i - 1
	}
	return i
}
