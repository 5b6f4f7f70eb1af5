package tile

import (
	"math"
)

const (
	// MaxLevel is the deepest zoom level the addressing math supports
	MaxLevel = 23
)

// Tile represents a slippy-map tile in the standard XYZ quad-tree grid
type Tile struct {
	Z int
	X int
	Y int
}

// At converts WGS84 coordinates to the tile containing them at the given zoom
func At(lon, lat float64, zoom int) Tile {
	latRad := lat * math.Pi / 180
	n := math.Pow(2, float64(zoom))
	x := int(math.Floor((lon + 180.0) / 360.0 * n))
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2.0 * n))
	return Tile{Z: zoom, X: x, Y: y}
}

// Neighborhood returns the (2r+1)x(2r+1) block of tiles centered on t.
// Tiles are returned row-major; no clamping is applied at the antimeridian,
// callers accept the occasional out-of-range coordinate as a harmless miss.
func (t Tile) Neighborhood(radius int) []Tile {
	side := 2*radius + 1
	out := make([]Tile, 0, side*side)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			out = append(out, Tile{Z: t.Z, X: t.X + dx, Y: t.Y + dy})
		}
	}
	return out
}
