package main

import (
	"context"
	"log"

	"github.com/jobdeck/jobdeck/internal/server"
	"github.com/jobdeck/jobdeck/internal/server/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := server.NewApp(cfg)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
