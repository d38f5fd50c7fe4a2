// Package fetcher implements the tile image retrieval collaborator: an
// HTTP slippy-map fetcher with an optional byte-cache layer in front of
// the upstream server.
package fetcher

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/maptile"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/skyatlas/tilestream/internal/repository/cache"
	"github.com/skyatlas/tilestream/pkg/logger"
	"github.com/skyatlas/tilestream/pkg/metrics"
	"github.com/skyatlas/tilestream/pkg/telemetry"
)

type Config struct {
	// TileURL is the upstream template with {x}, {y} and {z} placeholders.
	TileURL   string
	UserAgent string
	Timeout   time.Duration
}

type HTTPFetcher struct {
	cfg    Config
	client *http.Client
	cache  cache.TileCache
	logger logger.Logger
}

func NewHTTPFetcher(cfg Config, store cache.TileCache, l logger.Logger) *HTTPFetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  store,
		logger: l,
	}
}

// FetchTile retrieves and decodes one tile image, trying the byte cache
// before the upstream server. Upstream bytes are stored back into the
// cache fire-and-forget.
func (f *HTTPFetcher) FetchTile(ctx context.Context, t maptile.Tile) (image.Image, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "fetch_tile")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tile.x", int(t.X)),
		attribute.Int("tile.y", int(t.Y)),
		attribute.Int("tile.zoom", int(t.Z)),
	)

	key := cache.TileCacheKey{X: int(t.X), Y: int(t.Y), Z: int(t.Z)}

	if f.cache != nil {
		data, exists, err := f.cache.Get(key)
		if err != nil {
			f.logger.Warn("cache lookup failed, will fetch from upstream", "error", err)
		} else if exists {
			metrics.CacheHits.Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return decodeTile(data)
		}
		metrics.CacheMisses.Inc()
	}

	data, err := f.fetchUpstream(ctx, t)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if f.cache != nil {
		// Store in cache (fire and forget)
		go func() {
			if err := f.cache.Set(key, data); err != nil {
				f.logger.Warn("failed to store tile in cache", "error", err)
				return
			}
			metrics.CacheStores.Inc()
		}()
	}

	return decodeTile(data)
}

func (f *HTTPFetcher) fetchUpstream(ctx context.Context, t maptile.Tile) ([]byte, error) {
	url := f.tileURL(t)
	f.logger.Debug("fetching from upstream", "url", url)

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tile from upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("upstream returned empty tile")
	}

	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	return data, nil
}

func (f *HTTPFetcher) tileURL(t maptile.Tile) string {
	url := strings.Replace(f.cfg.TileURL, "{x}", strconv.Itoa(int(t.X)), -1)
	url = strings.Replace(url, "{y}", strconv.Itoa(int(t.Y)), -1)
	url = strings.Replace(url, "{z}", strconv.Itoa(int(t.Z)), -1)
	return url
}
