package streamer

import (
	"context"
	"math"
	"sort"

	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/tilemath"
	"github.com/skyatlas/tilestream/pkg/metrics"
)

// frustumDot is the cutoff for the generous view-frustum discard: a tile is
// skipped only when it is well behind the camera and far away, so fast
// rotation does not cause visible pop-in.
const frustumDot = -0.3

// visibleRange is how many tiles from center to load in each direction.
// Narrower at high zoom because each tile covers less ground.
func visibleRange(z maptile.Zoom) int {
	switch {
	case z >= 18:
		return 3
	case z >= 16:
		return 4
	case z >= 14:
		return 5
	default:
		return 6
	}
}

// maxConcurrentLoads is the per-tick dispatch budget for plain tiles.
func maxConcurrentLoads(z maptile.Zoom) int {
	switch {
	case z >= 17:
		return 8
	case z >= 15:
		return 10
	default:
		return 12
	}
}

// schedule runs the demand scheduler for one tick: it always claims overlay
// entries near the camera at their native zoom, then dispatches the
// highest-priority candidates around the camera at the current zoom, up to
// the concurrency budget.
func (s *Streamer) schedule(cam *Camera) {
	z := s.zoom
	vr := visibleRange(z)
	center := tilemath.WorldToTile(cam.X, cam.Z, z)

	near := s.overlays.Near(center, vr)
	if len(near) > 0 {
		s.log.Debug("overlay entries near camera", "count", len(near))
	}

	// Overlay content always loads at full fidelity, outside the budget.
	for _, t := range near {
		if s.tracked(t) {
			continue
		}
		s.dispatch(t)
	}

	// Which current-zoom tiles cover a nearby overlay entry.
	overlayHere := make(map[maptile.Tile]struct{})
	for _, t := range near {
		for _, c := range tilemath.Expand(t, z) {
			overlayHere[c] = struct{}{}
		}
	}

	type candidate struct {
		tile maptile.Tile
		dist int
	}

	frac := tilemath.Fraction(cam.X, cam.Z, z)
	heightTiles := cam.Y / tilemath.TileSpan(z)
	maxIndex := int64(tilemath.MaxTileIndex(z))

	var candidates []candidate
	for dx := -vr; dx <= vr; dx++ {
		for dy := -vr; dy <= vr; dy++ {
			tx := clampIndex(int64(center.X)+int64(dx), maxIndex)
			ty := clampIndex(int64(center.Y)+int64(dy), maxIndex)
			t := maptile.New(tx, ty, z)

			dist := abs(dx) + abs(dy)
			if _, ok := overlayHere[t]; ok {
				// Overlay-adjacent tiles jump ahead of same-distance
				// plain tiles.
				dist /= 2
			}

			// Direction and distance from camera to tile center, in tile
			// units at the current zoom.
			toX := float64(t.X) + 0.5 - frac[0]
			toY := -heightTiles
			toZ := float64(t.Y) + 0.5 - frac[1]
			length := math.Sqrt(toX*toX + toY*toY + toZ*toZ)
			if length > 0 {
				dot := (toX*cam.Forward[0] + toY*cam.Forward[1] + toZ*cam.Forward[2]) / length
				if dot < frustumDot && length > float64(vr)*1.5 {
					continue
				}
			}

			candidates = append(candidates, candidate{tile: t, dist: dist})
		}
	}

	// Stable: ties keep enumeration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	budget := maxConcurrentLoads(z)
	dispatched := 0
	for _, c := range candidates {
		if dispatched >= budget {
			break
		}
		if s.tracked(c.tile) {
			continue
		}
		s.dispatch(c.tile)
		dispatched++
	}
}

// dispatch claims a key and spawns its fetch. The claim is inserted before
// the fetch starts so no key ever has two outstanding fetches. On failure
// the key keeps its claim and the result directs a fallback visual.
func (s *Streamer) dispatch(t maptile.Tile) {
	s.states[t] = phaseRequested
	metrics.TilesRequested.Inc()
	s.log.Debug("dispatching tile fetch", "x", t.X, "y", t.Y, "zoom", t.Z)

	s.spawn(func() {
		img, err := s.fetcher.FetchTile(context.Background(), t)
		if err != nil {
			metrics.TileFetchFailures.Inc()
			s.log.Debug("tile fetch failed, will use fallback",
				"x", t.X, "y", t.Y, "zoom", t.Z, "error", err)
			s.results.push(fetchResult{tile: t})
			return
		}
		s.results.push(fetchResult{tile: t, img: img})
	})
}

func clampIndex(v, max int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > max {
		return uint32(max)
	}
	return uint32(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
