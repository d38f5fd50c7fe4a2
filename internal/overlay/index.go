// Package overlay stores the persistent tile entries pinned at one fixed
// zoom level and answers correspondence queries for tiles at any zoom.
package overlay

import (
	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/tilemath"
)

// Entry is one persistent tile at the overlay zoom. Entries are created by
// the host application before streaming starts and are never evicted.
type Entry struct {
	X    uint32            `json:"x"`
	Y    uint32            `json:"y"`
	Name string            `json:"name" validate:"required"`
	Meta map[string]string `json:"meta,omitempty"`
}

// searchRadiusFactor widens the near-camera search so overlay content is
// fetched well before it enters the primary view window.
const searchRadiusFactor = 3

// Index holds all overlay entries. It is populated once at startup and
// read-only afterwards, so the main loop can query it without locking.
type Index struct {
	zoom    maptile.Zoom
	entries map[maptile.Tile]Entry
}

func NewIndex(zoom maptile.Zoom) *Index {
	return &Index{
		zoom:    zoom,
		entries: make(map[maptile.Tile]Entry),
	}
}

func (ix *Index) Zoom() maptile.Zoom {
	return ix.zoom
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

func (ix *Index) Add(e Entry) {
	ix.entries[maptile.New(e.X, e.Y, ix.zoom)] = e
}

// Get returns the entry for an exact overlay key. Tiles at other zoom
// levels never match, even when they cover an entry.
func (ix *Index) Get(t maptile.Tile) (Entry, bool) {
	if t.Z != ix.zoom {
		return Entry{}, false
	}
	e, ok := ix.entries[t]
	return e, ok
}

// IsEntry reports whether t is itself an overlay key.
func (ix *Index) IsEntry(t maptile.Tile) bool {
	_, ok := ix.Get(t)
	return ok
}

// Corresponds reports whether t covers or is covered by any overlay entry,
// at any zoom level. An exact overlay key corresponds to itself.
func (ix *Index) Corresponds(t maptile.Tile) bool {
	if t.Z == ix.zoom {
		return ix.IsEntry(t)
	}
	for key := range ix.entries {
		if tilemath.Related(t, key) {
			return true
		}
	}
	return false
}

// Near returns the overlay keys whose reprojection to the center's zoom
// lies within searchRadiusFactor*visibleRange Manhattan distance of it.
func (ix *Index) Near(center maptile.Tile, visibleRange int) []maptile.Tile {
	limit := visibleRange * searchRadiusFactor

	var out []maptile.Tile
	for key := range ix.entries {
		p := tilemath.AtZoom(key, center.Z)
		dist := absDiff(p.X, center.X) + absDiff(p.Y, center.Y)
		if dist <= limit {
			out = append(out, key)
		}
	}
	return out
}

func absDiff(a, b uint32) int {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return int(d)
}
