package main

import (
	"os"
	"os/signal"
	"syscall"

	"clubassist/app/server"
	"clubassist/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	s := server.NewServer(cfg, logger)

	go func() {
		if err := s.Run(); err != nil {
			logger.Fatal().Err(err).Msg("server exited")
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	logger.Info().Msg("received shutdown signal, shutting down server")
	s.Stop()
}
