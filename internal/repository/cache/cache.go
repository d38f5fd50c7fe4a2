// Package cache is the tile byte cache behind the fetch pipeline: encoded
// tile images keyed by slippy coordinates, with interchangeable in-memory,
// sqlite, redis and filesystem backends.
package cache

// TileCacheKey addresses one tile in the slippy grid. Plain ints rather
// than the streamer's tile type so backends serialize it without caring
// about zoom semantics.
type TileCacheKey struct {
	X int
	Y int
	Z int
}

// TileCacheValue is the encoded tile image as fetched, not decoded pixels.
type TileCacheValue []byte

// TileCache stores raw tile image bytes so the fetch pipeline can skip the
// upstream round trip for tiles it has seen before. Get reports a miss via
// the bool, reserving the error for backend failures.
type TileCache interface {
	Get(TileCacheKey) (TileCacheValue, bool, error)
	Set(TileCacheKey, TileCacheValue) error
}
