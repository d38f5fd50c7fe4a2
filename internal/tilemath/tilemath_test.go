package tilemath

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestMaxTileIndex(t *testing.T) {
	cases := []struct {
		zoom maptile.Zoom
		want uint32
	}{
		{0, 0},
		{1, 1},
		{15, 32767},
		{18, 262143},
	}
	for _, tc := range cases {
		if got := MaxTileIndex(tc.zoom); got != tc.want {
			t.Errorf("MaxTileIndex(%d) = %d, want %d", tc.zoom, got, tc.want)
		}
	}
}

func TestWorldToTileKnownPoints(t *testing.T) {
	// Greenwich on the equator at zoom 1: both axes sit on the quadrant
	// boundary, which belongs to the south-eastern tile.
	if got := WorldToTile(0, 0, 1); got.X != 1 || got.Y != 1 {
		t.Errorf("WorldToTile(0,0,1) = (%d,%d), want (1,1)", got.X, got.Y)
	}
	// Far west stays on the grid.
	if got := WorldToTile(-180, 0, 3); got.X != 0 {
		t.Errorf("WorldToTile(-180,_,3).X = %d, want 0", got.X)
	}
}

func TestWorldToTileClampsPolarLatitudes(t *testing.T) {
	// Beyond the web-mercator cutoff the projection runs off the grid; the
	// result must still be a valid tile index.
	for _, lat := range []float64{89.9, -89.9} {
		got := WorldToTile(13.4, lat, 18)
		if got.Y > MaxTileIndex(18) {
			t.Errorf("lat %v: Y = %d exceeds grid", lat, got.Y)
		}
	}
}

func TestWorldToTileCenterRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		z := maptile.Zoom(10 + rng.Intn(9))
		tile := maptile.New(
			rng.Uint32()%(MaxTileIndex(z)+1),
			rng.Uint32()%(MaxTileIndex(z)+1),
			z,
		)
		c := Center(tile)
		if got := WorldToTile(c[0], c[1], z); got != tile {
			t.Fatalf("center of %v maps to %v", tile, got)
		}
	}
}

func TestAtZoomCoarsenIsRightShift(t *testing.T) {
	tile := maptile.New(1059, 693, 17)
	got := AtZoom(tile, 14)
	if got.X != 1059>>3 || got.Y != 693>>3 || got.Z != 14 {
		t.Errorf("AtZoom to 14 = %v", got)
	}
	if same := AtZoom(tile, 17); same != tile {
		t.Errorf("AtZoom at own zoom changed the tile: %v", same)
	}
}

func TestAtZoomCoarsenCollapsesSiblings(t *testing.T) {
	// All four children of a tile land on the same parent.
	parent := maptile.New(52, 31, 10)
	for dx := uint32(0); dx < 2; dx++ {
		for dy := uint32(0); dy < 2; dy++ {
			child := maptile.New(52*2+dx, 31*2+dy, 11)
			if got := AtZoom(child, 10); got != parent {
				t.Errorf("child %v coarsens to %v, want %v", child, got, parent)
			}
		}
	}
}

func TestExpandRefineEnumeratesBlock(t *testing.T) {
	tile := maptile.New(100, 200, 15)

	block := Expand(tile, 17)
	if len(block) != 16 {
		t.Fatalf("zoom +2 block has %d tiles, want 16", len(block))
	}
	seen := make(map[maptile.Tile]bool)
	for _, c := range block {
		seen[c] = true
		if c.X>>2 != 100 || c.Y>>2 != 200 || c.Z != 17 {
			t.Errorf("block member %v is outside the parent", c)
		}
	}
	if len(seen) != 16 {
		t.Error("block contains duplicates")
	}

	if one := Expand(tile, 13); len(one) != 1 || one[0] != AtZoom(tile, 13) {
		t.Errorf("coarsening expand = %v", one)
	}
	if same := Expand(tile, 15); len(same) != 1 || same[0] != tile {
		t.Errorf("same-zoom expand = %v", same)
	}
}

func TestExpandRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		z := maptile.Zoom(12 + rng.Intn(5))
		tile := maptile.New(
			rng.Uint32()%(MaxTileIndex(z)+1),
			rng.Uint32()%(MaxTileIndex(z)+1),
			z,
		)

		// Refine then coarsen each member: all land back on the original.
		for _, c := range Expand(tile, z+2) {
			if got := AtZoom(c, z); got != tile {
				t.Fatalf("expand member %v coarsens to %v, want %v", c, got, tile)
			}
		}
	}
}

func TestRelated(t *testing.T) {
	a := maptile.New(100, 200, 15)

	if !Related(a, a) {
		t.Error("tile not related to itself")
	}
	if Related(a, maptile.New(101, 200, 15)) {
		t.Error("sibling tiles reported related")
	}
	if !Related(a, maptile.New(400, 800, 17)) {
		t.Error("tile not related to its zoom+2 corner child")
	}
	if !Related(maptile.New(400, 800, 17), a) {
		t.Error("relatedness is not symmetric")
	}
	if !Related(a, maptile.New(50, 100, 14)) {
		t.Error("tile not related to its parent")
	}
	if Related(a, maptile.New(404, 800, 17)) {
		t.Error("tile related to a neighbor's child")
	}
}

func TestTileSpanHalvesPerZoom(t *testing.T) {
	if TileSpan(0) != 360 {
		t.Errorf("TileSpan(0) = %v", TileSpan(0))
	}
	for z := maptile.Zoom(1); z <= 19; z++ {
		if TileSpan(z) != TileSpan(z-1)/2 {
			t.Errorf("TileSpan(%d) = %v, want half of the level above", z, TileSpan(z))
		}
	}
}

func TestFractionAgreesWithWorldToTile(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		lon := rng.Float64()*340 - 170
		lat := rng.Float64()*160 - 80
		z := maptile.Zoom(10 + rng.Intn(9))

		f := Fraction(lon, lat, z)
		tile := WorldToTile(lon, lat, z)
		if uint32(f[0]) != tile.X || uint32(f[1]) != tile.Y {
			t.Fatalf("floor(Fraction(%v,%v,%d)) = (%v,%v), tile = %v",
				lon, lat, z, uint32(f[0]), uint32(f[1]), tile)
		}
	}
}
