package main

import (
	"log"

	"github.com/skyatlas/tilestream/internal/app"
	"github.com/skyatlas/tilestream/pkg/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalln("failed to load config: ", err)
	}

	app.Run(cfg)
}
