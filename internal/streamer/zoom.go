package streamer

import (
	"sort"

	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/tilemath"
	"github.com/skyatlas/tilestream/pkg/metrics"
)

const (
	// zoomEnterBuffer keeps the controller from chattering right at a
	// threshold; zoomExitBuffer additionally requires the camera to be
	// solidly past it before a coarser zoom is committed.
	zoomEnterBuffer = 1.0
	zoomExitBuffer  = 3.0

	// preloadRange gives the 5x5 block preloaded at a neighboring zoom.
	preloadRange = 2

	// Tiles farther than these visible-range multiples from the new
	// center are retired on a zoom change; the state store keeps a wider
	// margin than the entity list so borderline tiles are not re-fetched.
	retireActiveMargin = 4
	retireStateMargin  = 5

	// Tiles more than this many levels from the new zoom are retired.
	retireZoomWindow = 2
)

// autoZoom picks the target zoom from camera height, preloads neighboring
// zoom levels the camera is trending toward, and on an actual change
// retires tiles at zooms or positions too distant from the new view.
func (s *Streamer) autoZoom(cam *Camera) {
	if len(s.cfg.HeightThresholds) == 0 {
		return
	}

	h := cam.Y
	newZoom := s.zoom
	minHeight := 0.0
	matched := false
	for _, ht := range s.cfg.HeightThresholds {
		if h >= ht.MinHeight+zoomEnterBuffer {
			newZoom = ht.Zoom
			minHeight = ht.MinHeight
			matched = true
			break
		}
	}
	if !matched {
		// Below every band: the finest configured entry applies.
		last := s.cfg.HeightThresholds[len(s.cfg.HeightThresholds)-1]
		newZoom = last.Zoom
		minHeight = last.MinHeight
	}

	if newZoom < s.zoom && h < minHeight+zoomExitBuffer {
		newZoom = s.zoom
	}

	if newZoom != s.zoom {
		// Smooth the transition by warming both levels.
		s.preload(cam, s.zoom)
		s.preload(cam, newZoom)
	} else if trend := s.trendZoom(h, minHeight); trend != s.zoom {
		s.preload(cam, trend)
	}

	if newZoom != s.zoom {
		s.changeZoom(cam, newZoom, h)
	}
}

// trendZoom estimates the zoom the camera is drifting toward within its
// current height band: climbing toward the upper part of the band means
// the next coarser level, sinking toward the bottom means the next finer.
func (s *Streamer) trendZoom(h, minHeight float64) maptile.Zoom {
	if h > minHeight+minHeight*0.7 && s.zoom > s.cfg.MinZoom {
		return s.zoom - 1
	}
	if h < minHeight+minHeight*0.3 && s.zoom < s.cfg.MaxZoom {
		return s.zoom + 1
	}
	return s.zoom
}

// preload claims a 5x5 block around the camera's projected position at the
// given zoom. Dedup applies as usual but the concurrency budget does not.
func (s *Streamer) preload(cam *Camera, z maptile.Zoom) {
	center := tilemath.WorldToTile(cam.X, cam.Z, z)
	maxIndex := int64(tilemath.MaxTileIndex(z))

	for dx := -preloadRange; dx <= preloadRange; dx++ {
		for dy := -preloadRange; dy <= preloadRange; dy++ {
			t := maptile.New(
				clampIndex(int64(center.X)+int64(dx), maxIndex),
				clampIndex(int64(center.Y)+int64(dy), maxIndex),
				z,
			)
			if s.tracked(t) {
				continue
			}
			s.log.Debug("preloading tile for zoom transition",
				"x", t.X, "y", t.Y, "zoom", t.Z)
			s.dispatch(t)
		}
	}
}

func (s *Streamer) changeZoom(cam *Camera, newZoom maptile.Zoom, h float64) {
	oldZoom := s.zoom
	s.zoom = newZoom
	metrics.ZoomChanges.Inc()
	s.log.Debug("zoom level changed",
		"old", oldZoom, "new", newZoom, "height", h)

	vr := visibleRange(newZoom)
	center := tilemath.WorldToTile(cam.X, cam.Z, newZoom)

	var retired []int
	for i, at := range s.active {
		if s.overlays.IsEntry(at.tile) {
			continue
		}
		if !keepOnZoomChange(at.tile, center, vr*retireActiveMargin) {
			retired = append(retired, i)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(retired)))
	for _, idx := range retired {
		if idx >= len(s.active) {
			continue
		}
		s.renderer.Destroy(s.active[idx].handle)
		s.active = append(s.active[:idx], s.active[idx+1:]...)
		metrics.TilesEvicted.Inc()
	}
	metrics.ActiveTiles.Set(float64(len(s.active)))

	for key := range s.states {
		if s.overlays.IsEntry(key) {
			continue
		}
		if !keepOnZoomChange(key, center, vr*retireStateMargin) {
			delete(s.states, key)
		}
	}
}

// keepOnZoomChange reports whether a tile survives a zoom change: within
// the zoom window and, reprojected to the new zoom, within margin tiles of
// the new center on both axes.
func keepOnZoomChange(t, center maptile.Tile, margin int) bool {
	zoomDiff := int(t.Z) - int(center.Z)
	if abs(zoomDiff) > retireZoomWindow {
		return false
	}
	p := tilemath.AtZoom(t, center.Z)
	return axisDiff(p.X, center.X) <= margin && axisDiff(p.Y, center.Y) <= margin
}

func axisDiff(a, b uint32) int {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return int(d)
}
