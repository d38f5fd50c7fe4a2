// Package app wires the demo host: config, logging, telemetry, the tile
// byte cache, the HTTP fetcher, a headless renderer and the streamer core,
// plus an ops HTTP surface and a simulated camera flight that drives the
// update loop.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulmach/orb/maptile"

	"github.com/skyatlas/tilestream/internal/fetcher"
	"github.com/skyatlas/tilestream/internal/render"
	"github.com/skyatlas/tilestream/internal/repository/cache"
	"github.com/skyatlas/tilestream/internal/streamer"
	"github.com/skyatlas/tilestream/pkg/config"
	"github.com/skyatlas/tilestream/pkg/logger"
	"github.com/skyatlas/tilestream/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)

	l.Info("starting tilestream", "config", cfg)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
	}

	store, err := cache.New(cfg.Cache, cfg.Redis, l)
	if err != nil {
		l.Fatal("failed to initialize tile cache", "error", err)
	}

	fetch := fetcher.NewHTTPFetcher(fetcher.Config{
		TileURL:   cfg.Upstream.TileURL,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout,
	}, store, l)

	overlays, err := loadOverlays(cfg.Stream, l)
	if err != nil {
		l.Fatal("failed to load overlay entries", "error", err)
	}

	streamCfg, err := streamConfig(cfg.Stream)
	if err != nil {
		l.Fatal("invalid stream config", "error", err)
	}

	renderer := render.NewHeadless(l)
	stream := streamer.New(streamCfg, fetch, renderer, overlays, l)

	var server *http.Server
	if cfg.Debug.Enabled {
		router := newRouter(stream, renderer, l)
		server = &http.Server{
			Addr:         ":" + cfg.Debug.Port,
			Handler:      router,
			ReadTimeout:  cfg.Debug.ReadTimeout,
			WriteTimeout: cfg.Debug.WriteTimeout,
			IdleTimeout:  cfg.Debug.IdleTimeout,
		}
		go func() {
			l.Info("starting debug http server", "port", cfg.Debug.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Fatal("failed to start debug server", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	flyLoop(stream, cfg.Stream.TickRate, quit, l)

	if server != nil {
		l.Info("shutting down debug server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			l.Error("debug server shutdown failed", "error", err)
		}
	}

	l.Info("application shutdown completed")
}

func streamConfig(cfg config.Stream) (streamer.Config, error) {
	thresholds, err := parseHeightThresholds(cfg.HeightThresholds)
	if err != nil {
		return streamer.Config{}, err
	}

	sc := streamer.DefaultConfig()
	sc.MinZoom = maptile.Zoom(cfg.MinZoom)
	sc.MaxZoom = maptile.Zoom(cfg.MaxZoom)
	sc.InitialZoom = maptile.Zoom(cfg.InitialZoom)
	sc.HeightThresholds = thresholds
	return sc, nil
}
