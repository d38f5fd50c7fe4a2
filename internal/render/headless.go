// Package render provides a headless Renderer for hosts without a real
// render backend: entities are uuid handles tracked in memory, useful for
// the demo binary and for exercising the full pipeline in development.
package render

import (
	"image"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/overlay"
	"github.com/skyatlas/tilestream/internal/streamer"
	"github.com/skyatlas/tilestream/pkg/logger"
)

type entity struct {
	tile     maptile.Tile
	fallback bool
	overlay  bool
	name     string
	lastUsed float64
}

type Headless struct {
	mu       sync.Mutex
	entities map[streamer.EntityHandle]*entity
	logger   logger.Logger
}

var _ streamer.Renderer = (*Headless)(nil)

func NewHeadless(l logger.Logger) *Headless {
	return &Headless{
		entities: make(map[streamer.EntityHandle]*entity),
		logger:   l,
	}
}

func (r *Headless) CreateTile(t maptile.Tile, img image.Image) streamer.EntityHandle {
	r.logger.Debug("creating tile entity", "x", t.X, "y", t.Y, "zoom", t.Z,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return r.add(&entity{tile: t})
}

func (r *Headless) CreateFallback(t maptile.Tile) streamer.EntityHandle {
	r.logger.Debug("creating fallback entity", "x", t.X, "y", t.Y, "zoom", t.Z)
	return r.add(&entity{tile: t, fallback: true})
}

func (r *Headless) CreateOverlayFallback(t maptile.Tile, tint float64) streamer.EntityHandle {
	r.logger.Debug("creating overlay fallback entity",
		"x", t.X, "y", t.Y, "zoom", t.Z, "tint", tint)
	return r.add(&entity{tile: t, fallback: true, overlay: true})
}

func (r *Headless) Destroy(h streamer.EntityHandle) {
	r.mu.Lock()
	delete(r.entities, h)
	r.mu.Unlock()
}

func (r *Headless) AttachTileMetadata(h streamer.EntityHandle, t maptile.Tile, lastUsed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entities[h]; ok {
		e.tile = t
		e.lastUsed = lastUsed
	}
}

func (r *Headless) AttachOverlayMetadata(h streamer.EntityHandle, entry overlay.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entities[h]; ok {
		e.overlay = true
		e.name = entry.Name
	}
}

func (r *Headless) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

func (r *Headless) add(e *entity) streamer.EntityHandle {
	h := streamer.EntityHandle(uuid.NewString())
	r.mu.Lock()
	r.entities[h] = e
	r.mu.Unlock()
	return h
}
