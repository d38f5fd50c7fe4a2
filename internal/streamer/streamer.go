// Package streamer orchestrates tile streaming for a 3D map viewer: it
// decides which tiles the camera needs, fetches them asynchronously,
// hands results to the render collaborator and evicts tiles that fell out
// of use. It performs no network transport, image decoding or render
// object construction itself; those arrive through the Fetcher and
// Renderer interfaces.
package streamer

import (
	"context"
	"image"
	"sync"

	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/overlay"
	"github.com/skyatlas/tilestream/pkg/logger"
)

// EntityHandle identifies one render object owned by the Renderer. The
// streamer only stores it and eventually asks for its destruction.
type EntityHandle string

// Camera is the per-tick view input. X is longitude, Z is latitude (world
// degrees), Y is height in world units. Forward must be a unit vector.
type Camera struct {
	X, Y, Z float64
	Forward [3]float64
}

// Fetcher retrieves one tile image. A returned error is never surfaced; it
// degrades the tile to a fallback visual.
type Fetcher interface {
	FetchTile(ctx context.Context, t maptile.Tile) (image.Image, error)
}

// Renderer is the external render-entity collaborator.
type Renderer interface {
	CreateTile(t maptile.Tile, img image.Image) EntityHandle
	CreateFallback(t maptile.Tile) EntityHandle
	CreateOverlayFallback(t maptile.Tile, tint float64) EntityHandle
	Destroy(h EntityHandle)
	AttachTileMetadata(h EntityHandle, t maptile.Tile, lastUsed float64)
	AttachOverlayMetadata(h EntityHandle, e overlay.Entry)
}

// HeightThreshold maps a minimum camera height to a zoom level. The table
// is ordered descending by height, first match from the top wins.
type HeightThreshold struct {
	MinHeight float64
	Zoom      maptile.Zoom
}

type Config struct {
	MinZoom     maptile.Zoom
	MaxZoom     maptile.Zoom
	InitialZoom maptile.Zoom

	// HeightThresholds must be sorted descending by MinHeight.
	HeightThresholds []HeightThreshold

	// Seconds a tile may go unseen before the sweep removes it.
	TileTimeout          float64
	CorrespondingTimeout float64
	OverlayTimeout       float64

	// World-unit distances within which a tile counts as visible.
	VisibleDistance        float64
	OverlayVisibleDistance float64

	// Seconds between eviction sweeps.
	CleanupInterval float64
}

func DefaultConfig() Config {
	return Config{
		MinZoom:     13,
		MaxZoom:     19,
		InitialZoom: 15,
		HeightThresholds: []HeightThreshold{
			{200, 13}, {120, 14}, {80, 15}, {50, 16}, {25, 17}, {10, 18}, {0, 19},
		},
		TileTimeout:            45,
		CorrespondingTimeout:   90,
		OverlayTimeout:         180,
		VisibleDistance:        30,
		OverlayVisibleDistance: 50,
		CleanupInterval:        5,
	}
}

// Streamer is the streaming cache. All methods must be called from a single
// goroutine (the host's update loop), except Stats and the fetch completions
// the streamer spawns internally; the result queue and the published stats
// snapshot are the only shared state.
type Streamer struct {
	cfg      Config
	log      logger.Logger
	fetcher  Fetcher
	renderer Renderer
	overlays *overlay.Index

	zoom    maptile.Zoom
	states  map[maptile.Tile]tilePhase
	active  []activeTile
	results resultQueue

	now   float64 // simulated seconds since start
	total float64 // accumulated time, throttles the eviction sweep

	// stats is the snapshot served to other goroutines; the live
	// structures above stay single-goroutine.
	statsMu sync.Mutex
	stats   Stats

	// spawn runs a fetch unit of work; tests replace it to run inline.
	spawn func(func())
}

func New(cfg Config, f Fetcher, r Renderer, ovl *overlay.Index, l logger.Logger) *Streamer {
	if l == nil {
		l = logger.NewNoop()
	}
	return &Streamer{
		cfg:      cfg,
		log:      l,
		fetcher:  f,
		renderer: r,
		overlays: ovl,
		zoom:     cfg.InitialZoom,
		states:   make(map[maptile.Tile]tilePhase),
		stats:    Stats{Zoom: cfg.InitialZoom, Overlays: ovl.Len()},
		spawn:    func(fn func()) { go fn() },
	}
}

// Update advances the streamer by one tick. A nil camera skips every
// camera-dependent stage; results are still applied and the eviction sweep
// still runs, so a headless tick is a cheap no-op rather than an error.
func (s *Streamer) Update(cam *Camera, dt float64) {
	s.now += dt
	s.total += dt

	if cam != nil {
		s.autoZoom(cam)
		s.schedule(cam)
	}
	s.applyResults()
	if cam != nil {
		s.updateVisible(cam)
	}
	s.cleanup()
	s.publishStats()
}

// Zoom returns the current zoom level.
func (s *Streamer) Zoom() maptile.Zoom {
	return s.zoom
}

// Stats is a point-in-time snapshot for the host's status surface.
type Stats struct {
	Zoom      maptile.Zoom `json:"zoom"`
	Active    int          `json:"active"`
	Requested int          `json:"requested"`
	Queued    int          `json:"queued"`
	Overlays  int          `json:"overlays"`
}

// Stats returns the snapshot published by the most recent Update. Safe to
// call from any goroutine.
func (s *Streamer) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// publishStats refreshes the snapshot at the end of a tick, after every
// stage has run.
func (s *Streamer) publishStats() {
	requested := 0
	for _, phase := range s.states {
		if phase == phaseRequested {
			requested++
		}
	}
	snap := Stats{
		Zoom:      s.zoom,
		Active:    len(s.active),
		Requested: requested,
		Queued:    s.results.size(),
		Overlays:  s.overlays.Len(),
	}

	s.statsMu.Lock()
	s.stats = snap
	s.statsMu.Unlock()
}
