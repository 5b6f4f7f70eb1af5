package radar

// State is the snapshot exposed to the UI layer: which frame is safe to
// render, slider position, and the loading/warming/playing flags
type State struct {
	ActiveTimestamp  int64   `json:"activeTimestamp"`
	DesiredTimestamp int64   `json:"desiredTimestamp"`
	FrameIndex       int     `json:"frameIndex"`
	PendingIndex     int     `json:"pendingIndex"` // -1 when no drag in progress
	WindowSize       int     `json:"windowSize"`
	IsLoadingFrame   bool    `json:"isLoadingFrame"`
	Warming          bool    `json:"warming"`
	WarmProgress     float64 `json:"warmProgress"`
	IsPlaying        bool    `json:"isPlaying"`
}

// CacheStats summarizes fetch-cache effectiveness
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Failures int64 `json:"failures"`
	Entries  int   `json:"entries"`
}
