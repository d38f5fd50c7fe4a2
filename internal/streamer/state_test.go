package streamer

import (
	"sync"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func TestResultQueueDrainEmpties(t *testing.T) {
	var q resultQueue
	q.push(fetchResult{tile: maptile.New(1, 2, 3)})
	q.push(fetchResult{tile: maptile.New(4, 5, 6)})

	batch := q.drain()
	if len(batch) != 2 {
		t.Fatalf("drained %d results, want 2", len(batch))
	}
	if q.size() != 0 {
		t.Errorf("queue size after drain = %d", q.size())
	}
	if got := q.drain(); got != nil {
		t.Errorf("second drain = %v, want nil", got)
	}
}

func TestResultQueueConcurrentPush(t *testing.T) {
	var q resultQueue
	var wg sync.WaitGroup
	const n = 64

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.push(fetchResult{tile: maptile.New(uint32(i), 0, 15)})
		}()
	}
	wg.Wait()

	if got := len(q.drain()); got != n {
		t.Errorf("drained %d results, want %d", got, n)
	}
}
