package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		Logger    Logger    `envPrefix:"LOGGER_"`
		Debug     Debug     `envPrefix:"DEBUG_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Cache     Cache     `envPrefix:"CACHE_"`
		Redis     Redis     `envPrefix:"REDIS_"`
		Upstream  Upstream  `envPrefix:"UPSTREAM_"`
		Stream    Stream    `envPrefix:"STREAM_"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	// Debug is the ops HTTP surface of the demo host (healthz, status,
	// prometheus metrics). It is not part of the streaming core.
	Debug struct {
		Enabled      bool          `env:"ENABLED" envDefault:"true"`
		Port         string        `env:"PORT" envDefault:"8090"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"tilestream"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	}

	Cache struct {
		Backend    string `env:"BACKEND" envDefault:"memory" validate:"oneof=memory sqlite redis filesystem disabled"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"tilecache.db"`
		Dir        string `env:"DIR" envDefault:"tilecache"`
	}

	Redis struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"24h"`
	}

	Upstream struct {
		TileURL   string        `env:"TILE_URL" envDefault:"https://tile.openstreetmap.org/{z}/{x}/{y}.png"`
		UserAgent string        `env:"USER_AGENT" envDefault:"TileStream/1.0 (https://github.com/skyatlas/tilestream)"`
		Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
	}

	Stream struct {
		OverlayZoom int `env:"OVERLAY_ZOOM" envDefault:"17" validate:"gte=0,lte=22"`
		MinZoom     int `env:"MIN_ZOOM" envDefault:"13" validate:"gte=0,lte=22"`
		MaxZoom     int `env:"MAX_ZOOM" envDefault:"19" validate:"gte=0,lte=22"`
		InitialZoom int `env:"INITIAL_ZOOM" envDefault:"15" validate:"gte=0,lte=22"`
		// Descending "height:zoom" pairs, first match from the top wins.
		HeightThresholds string `env:"HEIGHT_THRESHOLDS" envDefault:"200:13,120:14,80:15,50:16,25:17,10:18,0:19"`
		OverlayFile      string `env:"OVERLAY_FILE" envDefault:""`
		TickRate         int    `env:"TICK_RATE" envDefault:"10" validate:"gte=1"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
