package main

import (
	"fmt"
	"os"

	"github.com/tanami-dev/tanami/internal/config"
	"github.com/tanami-dev/tanami/internal/logger"
	"github.com/tanami-dev/tanami/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	srv := server.New(cfg, log, version)

	log.Info().Str("version", version).Msg("Starting Tanami chat server...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
