package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/ids"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/repository"
)

const SeedPassword = "Password123"

type seedUser struct {
	name    string
	email   string
	perms   []models.Permission
	comment string
}

var seedUsers = []seedUser{
	{"Alice", "alice@example.com", []models.Permission{models.PermissionRead, models.PermissionWrite}, "Hello, this is Alice!"},
	{"Bob", "bob@example.com", []models.Permission{models.PermissionRead, models.PermissionDelete}, "Bob was here."},
	{"Charlie", "charlie@example.com", []models.Permission{models.PermissionRead}, "Charlie says hi!"},
}

// Seed inserts the sample users and one comment each. Users whose email is
// already registered are skipped along with their comment, so reruns are safe.
func Seed(ctx context.Context, stores *Stores, hash func(string) ([]byte, error), log zerolog.Logger) (int, error) {
	passwordHash, err := hash(SeedPassword)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	created := 0
	for _, su := range seedUsers {
		now := time.Now()
		user := models.User{
			ID:           ids.New(),
			Name:         su.name,
			Email:        su.email,
			PasswordHash: passwordHash,
			Permissions:  models.NewPermissionSet(su.perms...),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := stores.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				log.Info().Str("email", su.email).Msg("seed user exists, skipping")
				continue
			}
			return created, fmt.Errorf("create %s: %w", su.email, err)
		}

		if err := stores.Comments.Create(ctx, models.Comment{
			ID:        ids.New(),
			Content:   su.comment,
			AuthorID:  user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return created, fmt.Errorf("create comment for %s: %w", su.email, err)
		}
		created++
	}
	return created, nil
}
