package overlay

import (
	"sort"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestGetMatchesExactZoomOnly(t *testing.T) {
	ix := NewIndex(17)
	ix.Add(Entry{X: 70000, Y: 42000, Name: "museum", Meta: map[string]string{"kind": "poi"}})

	e, ok := ix.Get(maptile.New(70000, 42000, 17))
	if !ok || e.Name != "museum" {
		t.Fatalf("Get exact key = %+v, %v", e, ok)
	}

	// The same ground at zoom 16 covers the entry but is not the entry.
	if _, ok := ix.Get(maptile.New(35000, 21000, 16)); ok {
		t.Error("coarser covering tile matched as an entry")
	}
	if ix.IsEntry(maptile.New(70001, 42000, 17)) {
		t.Error("neighboring key matched as an entry")
	}
}

func TestCorrespondsAcrossZooms(t *testing.T) {
	ix := NewIndex(17)
	ix.Add(Entry{X: 70000, Y: 42000, Name: "museum"})

	cases := []struct {
		tile maptile.Tile
		want bool
	}{
		{maptile.New(70000, 42000, 17), true},  // the entry itself
		{maptile.New(35000, 21000, 16), true},  // parent
		{maptile.New(8750, 5250, 14), true},    // three levels up
		{maptile.New(140000, 84000, 18), true}, // corner child
		{maptile.New(140002, 84000, 18), false},
		{maptile.New(70001, 42000, 17), false},
		{maptile.New(35001, 21000, 16), false},
	}
	for _, tc := range cases {
		if got := ix.Corresponds(tc.tile); got != tc.want {
			t.Errorf("Corresponds(%v) = %v, want %v", tc.tile, got, tc.want)
		}
	}
}

func TestNearUsesWidenedRadius(t *testing.T) {
	ix := NewIndex(17)
	// Camera tile is (1000,1000) at zoom 15; entries reproject by >>2.
	ix.Add(Entry{X: 4000, Y: 4000, Name: "at-center"})
	ix.Add(Entry{X: 4028, Y: 4028, Name: "edge"})     // (1007,1007): distance 14
	ix.Add(Entry{X: 4064, Y: 4000, Name: "too-far"})  // (1016,1000): distance 16
	ix.Add(Entry{X: 4000, Y: 4100, Name: "way-off"})  // (1000,1025)

	// visibleRange 5, widened by 3: Manhattan limit 15.
	got := ix.Near(maptile.New(1000, 1000, 15), 5)

	names := make([]string, 0, len(got))
	for _, key := range got {
		e, ok := ix.Get(key)
		if !ok {
			t.Fatalf("Near returned non-entry key %v", key)
		}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	want := []string{"at-center", "edge"}
	if len(names) != len(want) {
		t.Fatalf("Near returned %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Near returned %v, want %v", names, want)
		}
	}
}

func TestNearKeysAreNativeZoom(t *testing.T) {
	ix := NewIndex(18)
	ix.Add(Entry{X: 8000, Y: 8000, Name: "a"})

	got := ix.Near(maptile.New(1000, 1000, 15), 5)
	if len(got) != 1 {
		t.Fatalf("Near = %v, want one key", got)
	}
	if got[0].Z != 18 {
		t.Errorf("Near key zoom = %d, want native 18", got[0].Z)
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := NewIndex(17)
	if ix.Len() != 0 {
		t.Error("fresh index not empty")
	}
	if ix.Corresponds(maptile.New(1, 1, 15)) {
		t.Error("empty index reported a correspondence")
	}
	if got := ix.Near(maptile.New(1000, 1000, 15), 5); len(got) != 0 {
		t.Errorf("empty index Near = %v", got)
	}
}
