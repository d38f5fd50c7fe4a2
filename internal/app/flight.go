package app

import (
	"math"
	"os"
	"time"

	"github.com/skyatlas/tilestream/internal/streamer"
	"github.com/skyatlas/tilestream/pkg/logger"
)

// Demo flight path: a slow circle over central Berlin with the camera
// height breathing through several zoom bands.
const (
	flightCenterLon = 13.404954
	flightCenterLat = 52.520008
	flightRadius    = 0.02 // degrees
	flightMinHeight = 15.0
	flightMaxHeight = 160.0
	flightPeriod    = 120.0 // seconds per orbit
)

// flyLoop drives the streamer with the simulated camera until a signal
// arrives on quit.
func flyLoop(stream *streamer.Streamer, tickRate int, quit <-chan os.Signal, l logger.Logger) {
	interval := time.Second / time.Duration(tickRate)
	dt := interval.Seconds()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statusEvery := time.NewTicker(10 * time.Second)
	defer statusEvery.Stop()

	elapsed := 0.0
	for {
		select {
		case <-quit:
			l.Info("received shutdown signal")
			return
		case <-statusEvery.C:
			stats := stream.Stats()
			l.Info("streaming status",
				"zoom", stats.Zoom,
				"active", stats.Active,
				"requested", stats.Requested,
				"queued", stats.Queued,
			)
		case <-ticker.C:
			stream.Update(flightCamera(elapsed), dt)
			elapsed += dt
		}
	}
}

func flightCamera(elapsed float64) *streamer.Camera {
	angle := 2 * math.Pi * elapsed / flightPeriod

	// Height sweeps the band table once per orbit.
	phase := (math.Sin(angle/2) + 1) / 2
	height := flightMinHeight + phase*(flightMaxHeight-flightMinHeight)

	lon := flightCenterLon + flightRadius*math.Cos(angle)
	lat := flightCenterLat + flightRadius*math.Sin(angle)

	// Look along the direction of travel, pitched down.
	fx := -math.Sin(angle)
	fz := math.Cos(angle)
	forward := [3]float64{fx * 0.7, -0.7, fz * 0.7}
	norm := math.Sqrt(forward[0]*forward[0] + forward[1]*forward[1] + forward[2]*forward[2])
	forward[0] /= norm
	forward[1] /= norm
	forward[2] /= norm

	return &streamer.Camera{
		X:       lon,
		Y:       height,
		Z:       lat,
		Forward: forward,
	}
}
