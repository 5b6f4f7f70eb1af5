package tile

import "math"

// Region represents a map viewport as emitted by the map surface on pan/zoom
type Region struct {
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
	LatSpan   float64 `json:"latSpan"`
	LonSpan   float64 `json:"lonSpan"`
}

// Zoom derives the effective integer zoom level for the viewport,
// clamped to [0, maxNative]
func (r Region) Zoom(maxNative int) int {
	if r.LonSpan <= 0 {
		return maxNative
	}
	z := int(math.Floor(math.Log2(360.0 / r.LonSpan)))
	if z < 0 {
		z = 0
	}
	if z > maxNative {
		z = maxNative
	}
	return z
}

// CenterTile returns the tile containing the viewport center at the given zoom
func (r Region) CenterTile(zoom int) Tile {
	return At(r.CenterLon, r.CenterLat, zoom)
}
