package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/security"
)

func fastHash(p string) ([]byte, error) {
	return security.HashPasswordWithParams(p, security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	stores, err := OpenStores(ctx, &config.AppConfig{Store: config.StoreConfig{Driver: "memory"}}, zerolog.Nop())
	require.NoError(t, err)

	created, err := Seed(ctx, stores, fastHash, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	bob, err := stores.Users.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, bob.Permissions.Has(models.PermissionDelete))
	assert.False(t, bob.Permissions.Has(models.PermissionWrite))

	ok, err := security.VerifyPassword(SeedPassword, bob.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	comments, err := stores.Comments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 3)

	created, err = Seed(ctx, stores, fastHash, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, created)

	comments, err = stores.Comments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 3)
}
