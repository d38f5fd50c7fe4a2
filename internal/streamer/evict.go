package streamer

import (
	"math"
	"sort"

	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/tilemath"
	"github.com/skyatlas/tilestream/pkg/metrics"
)

// cleanupTolerance is the window after each CleanupInterval boundary in
// which the sweep fires; the modulo check keeps it to roughly once per
// interval without tracking a separate deadline.
const cleanupTolerance = 0.05

// updateVisible refreshes last-used timestamps for active tiles close
// enough to the camera to count as visible. Exact overlay tiles use a wider
// threshold since losing them is more disruptive.
func (s *Streamer) updateVisible(cam *Camera) {
	for i := range s.active {
		at := &s.active[i]

		c := tilemath.Center(at.tile)
		dx := c[0] - cam.X
		dy := cam.Y
		dz := c[1] - cam.Z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

		limit := s.cfg.VisibleDistance
		if s.overlays.IsEntry(at.tile) {
			limit = s.cfg.OverlayVisibleDistance
		}
		if dist < limit {
			at.lastUsed = s.now
		}
	}
}

// cleanup is the throttled eviction sweep: expire active tiles by their
// retention class, then prune stale claims from the state store.
func (s *Streamer) cleanup() {
	if math.Mod(s.total, s.cfg.CleanupInterval) > cleanupTolerance {
		return
	}

	var expired []int
	for i, at := range s.active {
		isExact := s.overlays.IsEntry(at.tile)
		if isExact {
			// True persistence: never swept, whatever the timestamp.
			continue
		}

		timeout := s.cfg.TileTimeout
		if at.tile.Z != s.overlays.Zoom() && s.overlays.Corresponds(at.tile) {
			timeout = s.cfg.CorrespondingTimeout
		}
		if s.now-at.lastUsed > timeout {
			expired = append(expired, i)
		}
	}

	// Highest index first so earlier removals do not shift later ones.
	sort.Sort(sort.Reverse(sort.IntSlice(expired)))
	for _, idx := range expired {
		if idx >= len(s.active) {
			continue
		}
		at := s.active[idx]
		s.renderer.Destroy(at.handle)
		s.active = append(s.active[:idx], s.active[idx+1:]...)
		metrics.TilesEvicted.Inc()
	}

	// Prune claims whose entity is gone. Requested claims stay until their
	// fetch reports back, and overlay keys are kept indefinitely so
	// persistent content is never re-fetched in a storm.
	activeSet := make(map[maptile.Tile]struct{}, len(s.active))
	for _, at := range s.active {
		activeSet[at.tile] = struct{}{}
	}
	for key, phase := range s.states {
		if phase != phaseActive {
			continue
		}
		if _, ok := activeSet[key]; ok {
			continue
		}
		if s.overlays.IsEntry(key) {
			continue
		}
		delete(s.states, key)
	}

	if len(expired) > 0 {
		s.log.Debug("cleaned up unused tiles", "count", len(expired))
		metrics.ActiveTiles.Set(float64(len(s.active)))
	}
}
