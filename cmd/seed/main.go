package main

import (
	"context"

	"github.com/vinay02022/testinBackend/internal/app"
	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/log"
	"github.com/vinay02022/testinBackend/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment).With().Str("component", "seed").Logger()
	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open stores")
	}
	defer stores.Close()

	created, err := app.Seed(ctx, stores, security.HashPassword, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}

	logger.Info().Int("users", created).Msg("sample data inserted")
}
