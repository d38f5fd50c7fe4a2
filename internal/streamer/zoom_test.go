package streamer

import (
	"testing"

	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/overlay"
)

func zoomConfig() Config {
	cfg := testConfig()
	cfg.InitialZoom = 12
	cfg.MinZoom = 10
	cfg.MaxZoom = 14
	cfg.HeightThresholds = []HeightThreshold{
		{100, 10},
		{50, 12},
		{0, 14},
	}
	return cfg
}

func TestAutoZoomHysteresis(t *testing.T) {
	s, _, _ := newTestStreamer(zoomConfig(), overlay.NewIndex(18))
	cam := cameraAbove(maptile.New(1000, 1000, 12), 60)

	// Inside the 50..100 band: stays at 12.
	s.autoZoom(cam)
	if s.Zoom() != 12 {
		t.Fatalf("zoom = %d, want 12 inside the home band", s.Zoom())
	}

	// Just past the 100 threshold: coarser switch needs the wider buffer.
	cam.Y = 102
	s.autoZoom(cam)
	if s.Zoom() != 12 {
		t.Errorf("zoom switched coarser at height 102, before the exit buffer")
	}
	cam.Y = 104
	s.autoZoom(cam)
	if s.Zoom() != 10 {
		t.Errorf("zoom = %d at height 104, want 10", s.Zoom())
	}

	// Descending: the finer switch takes effect just under the threshold,
	// well before the ascent point. That asymmetry is the hysteresis.
	cam.Y = 102
	s.autoZoom(cam)
	if s.Zoom() != 10 {
		t.Errorf("zoom flapped back to 12 at height 102")
	}
	cam.Y = 100
	s.autoZoom(cam)
	if s.Zoom() != 12 {
		t.Errorf("zoom = %d at height 100, want 12", s.Zoom())
	}
}

func TestAutoZoomBelowEveryBand(t *testing.T) {
	s, _, _ := newTestStreamer(zoomConfig(), overlay.NewIndex(18))
	cam := cameraAbove(maptile.New(1000, 1000, 12), 0.5)

	// Under the +1 buffer of even the zero band: the finest entry applies.
	s.autoZoom(cam)
	if s.Zoom() != 14 {
		t.Errorf("zoom = %d at ground level, want finest 14", s.Zoom())
	}
}

func TestAutoZoomPreloadsTrendLevel(t *testing.T) {
	s, f, _ := newTestStreamer(zoomConfig(), overlay.NewIndex(18))
	cam := cameraAbove(maptile.New(1000, 1000, 12), 90)

	// High in the 50..100 band: trending coarser, so a 5x5 block at zoom
	// 11 is warmed while the current zoom stays put.
	s.autoZoom(cam)
	if s.Zoom() != 12 {
		t.Fatalf("zoom = %d, want unchanged 12", s.Zoom())
	}
	if got := len(f.requestedAt(11)); got != 25 {
		t.Errorf("preloaded %d tiles at zoom 11, want 25", got)
	}

	// Preload claims dedup like everything else.
	s.autoZoom(cam)
	if got := len(f.requestedAt(11)); got != 25 {
		t.Errorf("repeat preload dispatched again: %d total", got)
	}

	// Low in the band: trending finer.
	cam.Y = 55
	s.autoZoom(cam)
	if got := len(f.requestedAt(13)); got != 25 {
		t.Errorf("preloaded %d tiles at zoom 13, want 25", got)
	}
}

func TestAutoZoomChangePreloadsBothLevels(t *testing.T) {
	s, f, _ := newTestStreamer(zoomConfig(), overlay.NewIndex(18))
	cam := cameraAbove(maptile.New(1000, 1000, 12), 104)

	s.autoZoom(cam)

	if s.Zoom() != 10 {
		t.Fatalf("zoom = %d, want 10", s.Zoom())
	}
	if got := len(f.requestedAt(12)); got != 25 {
		t.Errorf("outgoing zoom preload = %d tiles, want 25", got)
	}
	if got := len(f.requestedAt(10)); got != 25 {
		t.Errorf("incoming zoom preload = %d tiles, want 25", got)
	}
}

func TestChangeZoomRetiresDistantTiles(t *testing.T) {
	ovl := overlay.NewIndex(18)
	ovl.Add(overlay.Entry{X: 8000, Y: 8000, Name: "station"})
	s, _, r := newTestStreamer(testConfig(), ovl)
	s.zoom = 16

	cam := cameraAbove(maptile.New(2000, 2000, 15), 5)

	// vr(15)=5, active margin 20: kept needs both axes within 20 of the
	// new center once reprojected to zoom 15.
	nearSame := maptile.New(4002, 4002, 16)   // (2001,2001) at 15
	farSame := maptile.New(4100, 4000, 16)    // (2050,2000) at 15
	tooFineZ := maptile.New(32000, 32000, 18) // zoom gap of 3
	nearCoarse := maptile.New(1001, 1000, 14) // (2002,2000) at 15
	exact := maptile.New(8000, 8000, 18)      // overlay entries always stay

	for _, tile := range []maptile.Tile{nearSame, farSame, tooFineZ, nearCoarse, exact} {
		addActive(s, r, tile, 0)
	}
	// A far-away claim with no entity yet: state margin is 25.
	farClaim := maptile.New(4200, 4000, 16) // (2100,2000) at 15
	s.states[farClaim] = phaseRequested
	nearClaim := maptile.New(4010, 4000, 16) // (2005,2000) at 15
	s.states[nearClaim] = phaseRequested

	s.changeZoom(cam, 15, 80)

	if s.Zoom() != 15 {
		t.Fatalf("zoom = %d, want 15", s.Zoom())
	}
	left := make(map[maptile.Tile]bool)
	for _, at := range s.active {
		left[at.tile] = true
	}
	if !left[nearSame] || !left[nearCoarse] {
		t.Errorf("nearby tiles retired: same=%v coarse=%v", left[nearSame], left[nearCoarse])
	}
	if left[farSame] {
		t.Error("tile 50 tiles out survived the 20-tile margin")
	}
	if left[tooFineZ] {
		t.Error("tile three zoom levels away survived the +-2 window")
	}
	if !left[exact] {
		t.Error("exact overlay tile was retired on zoom change")
	}
	if _, ok := s.states[farClaim]; ok {
		t.Error("claim beyond the state margin survived")
	}
	if _, ok := s.states[nearClaim]; !ok {
		t.Error("claim inside the state margin was dropped")
	}
}
