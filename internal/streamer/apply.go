package streamer

import (
	"github.com/skyatlas/tilestream/pkg/metrics"
)

// applyResults drains the result queue and turns each completed fetch into
// a render entity. The queue lock is released before any entity creation so
// fetch completions never wait on the renderer.
func (s *Streamer) applyResults() {
	batch := s.results.drain()

	for _, r := range batch {
		if s.states[r.tile] != phaseRequested {
			// Late result for a key eviction already dropped.
			s.log.Debug("ignoring result for untracked tile",
				"x", r.tile.X, "y", r.tile.Y, "zoom", r.tile.Z)
			continue
		}

		isExact := s.overlays.IsEntry(r.tile)
		isCorresponding := r.tile.Z != s.overlays.Zoom() && s.overlays.Corresponds(r.tile)
		needsOverlayVisuals := isExact || isCorresponding

		var handle EntityHandle
		switch {
		case r.img != nil && needsOverlayVisuals:
			handle = s.renderer.CreateTile(r.tile, decorateOverlay(r.img))
		case r.img != nil:
			handle = s.renderer.CreateTile(r.tile, r.img)
		case needsOverlayVisuals:
			// Distinguish true persistent content from its cross-zoom shadow.
			tint := correspondingTint
			if isExact {
				tint = exactOverlayTint
			}
			handle = s.renderer.CreateOverlayFallback(r.tile, tint)
		default:
			handle = s.renderer.CreateFallback(r.tile)
		}

		s.renderer.AttachTileMetadata(handle, r.tile, s.now)
		if isExact {
			if entry, ok := s.overlays.Get(r.tile); ok {
				s.renderer.AttachOverlayMetadata(handle, entry)
			}
		}

		s.states[r.tile] = phaseActive
		s.active = append(s.active, activeTile{
			tile:     r.tile,
			handle:   handle,
			lastUsed: s.now,
		})
		metrics.TilesApplied.Inc()
	}

	if len(batch) > 0 {
		metrics.ActiveTiles.Set(float64(len(s.active)))
	}
}
