package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/apperr"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/repository"
)

var ErrUserIDNotFound = apperr.New(apperr.KindNotFound, "User not found")

type UserService struct {
	users    UserStore
	log      zerolog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewUserService(users UserStore, log zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
}

type permissionsInput struct {
	UserID      string   `json:"id" validate:"required"`
	Permissions []string `json:"permissions" validate:"required"`
}

// UpdatePermissions replaces the user's permission set. Any unrecognized
// value rejects the whole update; duplicates collapse. Callers only need to
// be authenticated. Concurrent permission updates are last-write-wins, but
// they never clobber password or reset state.
func (s *UserService) UpdatePermissions(ctx context.Context, userID string, permissions []string) (models.User, error) {
	if err := validateStruct(s.validate, permissionsInput{UserID: userID, Permissions: permissions}); err != nil {
		return models.User{}, err
	}

	set, err := models.ParsePermissions(permissions)
	if err != nil {
		return models.User{}, apperr.Validation(err.Error())
	}

	if err := s.users.SetPermissions(ctx, userID, set, s.now()); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserIDNotFound
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("permission update failed")
		return models.User{}, apperr.Internal(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserIDNotFound
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("permission update reload failed")
		return models.User{}, apperr.Internal(err)
	}

	s.log.Info().Str("user_id", userID).Strs("permissions", set.Strings()).Msg("permissions updated")
	return user, nil
}

// Identify resolves the user behind a verified access token subject.
func (s *UserService) Identify(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUnauthenticated
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("identity lookup failed")
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}
