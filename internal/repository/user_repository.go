package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vinay02022/testinBackend/internal/database"
	"github.com/vinay02022/testinBackend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, permissions, reset_token_hash, reset_expires_at, created_at, updated_at`

type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, name, email, password_hash, permissions, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $6
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Permissions.Strings(),
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByResetHash returns the user whose pending reset matches hash and has
// not expired at now.
func (r *UserRepository) FindByResetHash(ctx context.Context, hash []byte, now time.Time) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1 AND reset_expires_at > $2`
	return scanUser(r.db.QueryRow(ctx, query, hash, now))
}

func (r *UserRepository) SetPendingReset(ctx context.Context, userID string, reset models.PasswordReset, now time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2,
		    reset_expires_at = $3,
		    updated_at = $4
		WHERE id = $1
	`
	return r.updateOne(ctx, query, userID, reset.TokenHash, reset.ExpiresAt, now)
}

// ConsumeReset matches on the live reset hash, so two concurrent resets with
// the same token cannot both succeed.
func (r *UserRepository) ConsumeReset(ctx context.Context, userID string, resetHash, passwordHash []byte, now time.Time) error {
	const query = `
		UPDATE users
		SET password_hash = $3,
		    reset_token_hash = NULL,
		    reset_expires_at = NULL,
		    updated_at = $4
		WHERE id = $1 AND reset_token_hash = $2 AND reset_expires_at > $4
	`
	return r.updateOne(ctx, query, userID, resetHash, passwordHash, now)
}

func (r *UserRepository) SetPermissions(ctx context.Context, userID string, permissions models.PermissionSet, now time.Time) error {
	const query = `
		UPDATE users
		SET permissions = $2,
		    updated_at = $3
		WHERE id = $1
	`
	return r.updateOne(ctx, query, userID, permissions.Strings(), now)
}

func (r *UserRepository) updateOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearExpiredResets drops pending resets whose expiry passed before now.
func (r *UserRepository) ClearExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_expires_at = NULL
		WHERE reset_expires_at IS NOT NULL AND reset_expires_at <= $1
	`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user         models.User
		permissions  []string
		resetHash    []byte
		resetExpires *time.Time
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&permissions,
		&resetHash,
		&resetExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	set, err := models.ParsePermissions(permissions)
	if err != nil {
		return models.User{}, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.Permissions = set

	if resetHash != nil && resetExpires != nil {
		user.PendingReset = &models.PasswordReset{
			TokenHash: resetHash,
			ExpiresAt: *resetExpires,
		}
	}
	return user, nil
}
