package main

import (
	"context"

	"github.com/bbernstein/bikesampa/cmd/bikesampa/commands"
	"github.com/bbernstein/bikesampa/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.InitializeLogging()

	commands.ExecuteContext(context.Background(), cfg)
}
