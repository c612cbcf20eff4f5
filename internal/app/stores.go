// Package app assembles the persistence layer selected by configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/database"
	"github.com/vinay02022/testinBackend/internal/repository"
	"github.com/vinay02022/testinBackend/internal/service"
)

type Stores struct {
	Users         service.UserStore
	RefreshTokens service.RefreshTokenStore
	Comments      service.CommentStore
	// Probe is nil for the memory driver.
	Probe func(ctx context.Context) error
	close func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to postgres and applies migrations, or builds an
// in-process store when the memory driver is configured.
func OpenStores(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case "memory":
		mem := repository.NewMemory()
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &Stores{
			Users:         mem.Users(),
			RefreshTokens: mem.RefreshTokens(),
			Comments:      mem.Comments(),
		}, nil

	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Stores{
			Users:         repository.NewUserRepository(pool),
			RefreshTokens: repository.NewRefreshTokenRepository(pool),
			Comments:      repository.NewCommentRepository(pool),
			Probe:         pool.Ping,
			close:         pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
