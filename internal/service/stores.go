package service

import (
	"context"
	"time"

	"github.com/vinay02022/testinBackend/internal/models"
)

// UserStore is satisfied by repository.UserRepository and repository.MemoryUsers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByResetHash(ctx context.Context, hash []byte, now time.Time) (models.User, error)
	// The setters below touch only their own columns so concurrent flows on
	// one user do not overwrite each other. All report ErrUserNotFound when
	// no row matched.
	SetPendingReset(ctx context.Context, userID string, reset models.PasswordReset, now time.Time) error
	// ConsumeReset sets the password and clears the reset only while resetHash
	// is still the live pending reset.
	ConsumeReset(ctx context.Context, userID string, resetHash, passwordHash []byte, now time.Time) error
	SetPermissions(ctx context.Context, userID string, permissions models.PermissionSet, now time.Time) error
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token models.RefreshToken) error
	FindByHash(ctx context.Context, hash []byte) (models.RefreshToken, error)
	DeleteByHash(ctx context.Context, hash []byte) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	List(ctx context.Context) ([]models.Comment, error)
	GetByID(ctx context.Context, id string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}
