package prefetch

import (
	"radar-prefetch/internal/tile"
)

// Plan enumerates the tile URLs needed to render the given snapshot frames
// over a viewport: for every frame, for each zoom offset, the neighborhood
// block around the viewport's center tile.
//
// The spatial neighborhood tolerates small pans without a cache miss, the
// coarser zoom level tolerates pinch-zoom lag, and spanning every frame in
// the window lets timeline scrubbing skip network I/O entirely.
func Plan(src tile.Source, region tile.Region, frames []int64, zoomSpread []int, radius int) []string {
	baseZoom := region.Zoom(src.MaxZoom)

	side := 2*radius + 1
	urls := make([]string, 0, len(frames)*len(zoomSpread)*side*side)

	for _, ts := range frames {
		for _, offset := range zoomSpread {
			z := baseZoom + offset
			if z < 0 {
				z = 0
			}
			if z > src.MaxZoom {
				z = src.MaxZoom
			}
			center := region.CenterTile(z)
			for _, t := range center.Neighborhood(radius) {
				urls = append(urls, src.URL(ts, t))
			}
		}
	}

	return urls
}
