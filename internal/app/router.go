package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyatlas/tilestream/internal/render"
	"github.com/skyatlas/tilestream/internal/streamer"
	"github.com/skyatlas/tilestream/pkg/logger"
	"github.com/skyatlas/tilestream/pkg/telemetry"
)

func newRouter(stream *streamer.Streamer, renderer *render.Headless, l logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(telemetry.GinMiddleware("tilestream"))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		stats := stream.Stats()
		c.JSON(http.StatusOK, gin.H{
			"stream":   stats,
			"entities": renderer.Count(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
