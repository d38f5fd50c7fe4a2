// Package tilemath is the single source of truth for slippy-map tile
// addressing: world position to tile, and tile to tile across zoom levels.
// The scheduler, application stage and eviction sweep all resolve
// cross-zoom relationships through AtZoom/Expand/Related so they can never
// disagree about which tiles cover which.
package tilemath

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileSize is the pixel size of one square tile image.
const TileSize = 256

// MaxTileIndex returns the largest valid tile coordinate at the given zoom.
func MaxTileIndex(z maptile.Zoom) uint32 {
	return 1<<uint32(z) - 1
}

// WorldToTile maps a world position (x is longitude, z is latitude, both in
// degrees) to the tile containing it, clamped to the valid range.
func WorldToTile(x, z float64, zoom maptile.Zoom) maptile.Tile {
	t := maptile.At(orb.Point{x, z}, zoom)
	max := MaxTileIndex(zoom)
	if t.X > max {
		t.X = max
	}
	if t.Y > max {
		t.Y = max
	}
	return t
}

// Fraction returns the fractional tile coordinates of a world position at
// the given zoom. Used for distance math in tile units.
func Fraction(x, z float64, zoom maptile.Zoom) orb.Point {
	return maptile.Fraction(orb.Point{x, z}, zoom)
}

// Center returns the world position of the tile's center.
func Center(t maptile.Tile) orb.Point {
	return t.Center()
}

// TileSpan returns the longitude extent of one tile at the given zoom, in
// world units (degrees).
func TileSpan(zoom maptile.Zoom) float64 {
	return 360.0 / float64(uint64(1)<<uint64(zoom))
}

// AtZoom reprojects a tile address to another zoom level. Coarsening is a
// right shift and is lossy many-to-one. Refining returns the top-left tile
// of the covered block; use Expand when the whole block is needed.
func AtZoom(t maptile.Tile, zoom maptile.Zoom) maptile.Tile {
	if zoom == t.Z {
		return t
	}
	if zoom < t.Z {
		d := uint32(t.Z - zoom)
		return maptile.New(t.X>>d, t.Y>>d, zoom)
	}
	d := uint32(zoom - t.Z)
	return maptile.New(t.X<<d, t.Y<<d, zoom)
}

// Expand reprojects a tile address to another zoom level and enumerates
// every resulting tile: exactly one when target zoom is coarser or equal,
// the full 2^d x 2^d block when it is finer.
func Expand(t maptile.Tile, zoom maptile.Zoom) []maptile.Tile {
	if zoom <= t.Z {
		return []maptile.Tile{AtZoom(t, zoom)}
	}

	d := uint32(zoom - t.Z)
	startX := t.X << d
	startY := t.Y << d
	n := uint32(1) << d

	out := make([]maptile.Tile, 0, int(n)*int(n))
	for x := startX; x < startX+n; x++ {
		for y := startY; y < startY+n; y++ {
			out = append(out, maptile.New(x, y, zoom))
		}
	}
	return out
}

// Related reports whether two tile addresses cover the same ground: equal,
// or one contains the other across zoom levels.
func Related(a, b maptile.Tile) bool {
	if a.Z == b.Z {
		return a.X == b.X && a.Y == b.Y
	}
	if a.Z < b.Z {
		c := AtZoom(b, a.Z)
		return c.X == a.X && c.Y == a.Y
	}
	c := AtZoom(a, b.Z)
	return c.X == b.X && c.Y == b.Y
}
