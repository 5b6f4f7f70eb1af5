package prefetch

import (
	"math"

	"radar-prefetch/internal/tile"
)

// CoordPrecision is the rounding applied to viewport center coordinates
// when fingerprinting a warm-up: 1/100 of a degree, roughly a kilometer,
// so sub-kilometer drift does not invalidate a completed warm pass.
const CoordPrecision = 100

// Signature fingerprints a (viewport, frame window) pair so a completed
// warm-up can be recognized as still applicable without re-scanning tile
// sets. Compared by value; the zero Signature matches nothing warmable.
type Signature struct {
	TileSize int
	Zoom     int
	First    int64
	Last     int64
	Lat      int64 // center latitude, rounded to CoordPrecision
	Lon      int64 // center longitude, rounded to CoordPrecision
}

// NewSignature builds the warm signature for a viewport and frame window
func NewSignature(src tile.Source, region tile.Region, frames []int64) Signature {
	if len(frames) == 0 {
		return Signature{}
	}
	return Signature{
		TileSize: src.Size,
		Zoom:     region.Zoom(src.MaxZoom),
		First:    frames[0],
		Last:     frames[len(frames)-1],
		Lat:      int64(math.Round(region.CenterLat * CoordPrecision)),
		Lon:      int64(math.Round(region.CenterLon * CoordPrecision)),
	}
}
