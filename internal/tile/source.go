package tile

import "fmt"

// Source describes a radar tile host and the rendering options baked into
// every tile URL it serves
type Source struct {
	Host        string // e.g. "https://tilecache.rainviewer.com/v2/radar"
	Size        int    // tile edge in pixels, 256 or 512
	ColorScheme int
	Smoothing   int
	MaxZoom     int // deepest zoom the source renders natively
}

// URL builds the image URL for one radar tile at one snapshot timestamp
func (s Source) URL(timestamp int64, t Tile) string {
	return fmt.Sprintf("%s/%d/%d/%d/%d/%d/%d/%d.png",
		s.Host, timestamp, s.Size, t.Z, t.X, t.Y, s.ColorScheme, s.Smoothing)
}
