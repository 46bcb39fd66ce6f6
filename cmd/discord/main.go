package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/dispatchbot/internal/app"
	"github.com/keshon/dispatchbot/internal/config"
	"github.com/keshon/dispatchbot/internal/logging"

	"github.com/rs/zerolog"
)

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, loaded, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}
	if !loaded {
		boot.Info().Msg("No .env file found, falling back to system environment variables")
	}

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		boot.Fatal().Err(err).Msg("Invalid logging configuration")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Starting dispatchbot...")
	if err := app.Run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("Discord bot error")
		closer.Close()
		os.Exit(1)
	}
	log.Info().Msg("Discord bot exited cleanly")
}
