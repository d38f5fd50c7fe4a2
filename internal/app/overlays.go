package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/overlay"
	"github.com/skyatlas/tilestream/internal/streamer"
	"github.com/skyatlas/tilestream/pkg/config"
	"github.com/skyatlas/tilestream/pkg/logger"
)

// loadOverlays reads the persistent overlay entries from the configured
// JSON file. No file means an empty index, which is fine: the streamer
// then behaves as a plain tile cache.
func loadOverlays(cfg config.Stream, l logger.Logger) (*overlay.Index, error) {
	ix := overlay.NewIndex(maptile.Zoom(cfg.OverlayZoom))

	if cfg.OverlayFile == "" {
		l.Info("no overlay file configured, starting with empty index")
		return ix, nil
	}

	data, err := os.ReadFile(cfg.OverlayFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay file: %w", err)
	}

	var entries []overlay.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse overlay file: %w", err)
	}

	validate := validator.New()
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("invalid overlay entry %d: %w", i, err)
		}
		ix.Add(e)
	}

	l.Info("overlay entries loaded", "count", ix.Len(), "zoom", cfg.OverlayZoom)
	return ix, nil
}

// parseHeightThresholds parses "height:zoom,height:zoom,..." and returns
// the table sorted descending by height, as the zoom controller expects.
func parseHeightThresholds(s string) ([]streamer.HeightThreshold, error) {
	var out []streamer.HeightThreshold
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid height threshold %q", pair)
		}
		height, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid height in %q: %w", pair, err)
		}
		zoom, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid zoom in %q: %w", pair, err)
		}
		out = append(out, streamer.HeightThreshold{
			MinHeight: height,
			Zoom:      maptile.Zoom(zoom),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty height threshold table")
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MinHeight > out[j].MinHeight
	})
	return out, nil
}
