package streamer

import (
	"image"
	"sync"

	"github.com/paulmach/orb/maptile"
)

// tilePhase is the lifecycle tag of a claimed tile key. Absence from the
// state map means unrequested. A key stays phaseRequested while its fetch
// is in flight or its result waits in the queue; the claim is never rolled
// back on fetch failure, which is the sole dedup guard against re-fetch
// storms on a failing source.
type tilePhase uint8

const (
	phaseRequested tilePhase = iota + 1
	phaseActive
)

// activeTile is one tile with a live render entity. The slice is dense;
// the eviction sweep removes by index from the highest to the lowest.
type activeTile struct {
	tile     maptile.Tile
	handle   EntityHandle
	lastUsed float64
}

// fetchResult carries one completed fetch. A nil img is not an error: it
// directs the application stage to create a fallback visual.
type fetchResult struct {
	tile maptile.Tile
	img  image.Image
}

// resultQueue is the only state shared between fetch goroutines and the
// main loop. The lock is held just for the append/drain/scan itself, never
// during decode or entity creation.
type resultQueue struct {
	mu    sync.Mutex
	items []fetchResult
}

func (q *resultQueue) push(r fetchResult) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

func (q *resultQueue) drain() []fetchResult {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

func (q *resultQueue) contains(t maptile.Tile) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range q.items {
		if r.tile == t {
			return true
		}
	}
	return false
}

func (q *resultQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// tracked reports whether a key is already claimed: requested, active, or
// sitting in the result queue waiting to be applied.
func (s *Streamer) tracked(t maptile.Tile) bool {
	if _, ok := s.states[t]; ok {
		return true
	}
	return s.results.contains(t)
}
