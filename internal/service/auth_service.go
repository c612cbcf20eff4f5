package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/apperr"
	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/ids"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/notify"
	"github.com/vinay02022/testinBackend/internal/repository"
	"github.com/vinay02022/testinBackend/internal/security"
)

var (
	ErrEmailRegistered     = apperr.New(apperr.KindValidation, "User already exists with this email")
	ErrInvalidCredentials  = apperr.New(apperr.KindInvalidCredentials, "Invalid email or password")
	ErrInvalidRefreshToken = apperr.New(apperr.KindInvalidRefreshToken, "Invalid refresh token")
	ErrRefreshTokenExpired = apperr.New(apperr.KindRefreshTokenExpired, "Refresh token expired")
	ErrUserNotFound        = apperr.New(apperr.KindUserNotFound, "User not found with this email")
	ErrInvalidResetToken   = apperr.New(apperr.KindInvalidResetToken, "Invalid or expired reset token")
)

type AuthService struct {
	users        UserStore
	tokens       RefreshTokenStore
	codec        *security.TokenCodec
	notifier     notify.Notifier
	cfg          config.SecurityConfig
	log          zerolog.Logger
	validate     *validator.Validate
	now          func() time.Time
	hashPassword func(string) ([]byte, error)

	decoyOnce sync.Once
	decoyHash []byte
}

func NewAuthService(
	users UserStore,
	tokens RefreshTokenStore,
	codec *security.TokenCodec,
	notifier notify.Notifier,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		codec:        codec,
		notifier:     notifier,
		cfg:          cfg,
		log:          log,
		validate:     newValidator(),
		now:          time.Now,
		hashPassword: security.HashPassword,
	}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

type tokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

type ForgotPasswordResult struct {
	// ResetToken is empty unless security.exposeresettoken is enabled.
	ResetToken string
	ExpiresAt  time.Time
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(s.validate, input); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, s.internal(err, "signup lookup failed")
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return AuthResult{}, s.internal(err, "hash password failed")
	}

	now := s.now()
	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, ErrEmailRegistered
		}
		return AuthResult{}, s.internal(err, "create user failed")
	}

	s.log.Info().Str("user_id", user.ID).Msg("user signed up")
	return s.issueSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(s.validate, input); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.verifyDecoy(input.Password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, s.internal(err, "login lookup failed")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// verifyDecoy spends the same argon2 work as a real password check so an
// unknown email costs as long as a wrong password.
func (s *AuthService) verifyDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hashPassword("decoy-password-never-matches")
		if err != nil {
			s.log.Warn().Err(err).Msg("decoy hash unavailable")
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash != nil {
		_, _ = security.VerifyPassword(password, s.decoyHash)
	}
}

// issueSession mints an access token and persists a new refresh token.
// Existing sessions for the user are left untouched.
func (s *AuthService) issueSession(ctx context.Context, user models.User) (AuthResult, error) {
	accessToken, err := s.codec.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, s.internal(err, "issue access token failed")
	}

	refreshToken, err := security.IssueRefreshToken()
	if err != nil {
		return AuthResult{}, s.internal(err, "issue refresh token failed")
	}

	now := s.now()
	if err := s.tokens.Create(ctx, models.RefreshToken{
		TokenHash: security.HashToken(refreshToken),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	}); err != nil {
		return AuthResult{}, s.internal(err, "persist refresh token failed")
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Logout revokes one refresh token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := validateStruct(s.validate, tokenInput{RefreshToken: refreshToken}); err != nil {
		return err
	}
	if err := s.tokens.DeleteByHash(ctx, security.HashToken(refreshToken)); err != nil {
		return s.internal(err, "delete refresh token failed")
	}
	return nil
}

// Refresh mints a new access token. The refresh token is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if err := validateStruct(s.validate, tokenInput{RefreshToken: refreshToken}); err != nil {
		return "", err
	}

	hash := security.HashToken(refreshToken)
	stored, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", s.internal(err, "refresh lookup failed")
	}

	if stored.Expired(s.now()) {
		if err := s.tokens.DeleteByHash(ctx, hash); err != nil {
			return "", s.internal(err, "delete expired refresh token failed")
		}
		return "", ErrRefreshTokenExpired
	}

	accessToken, err := s.codec.IssueAccessToken(stored.UserID)
	if err != nil {
		return "", s.internal(err, "issue access token failed")
	}
	return accessToken, nil
}

// ForgotPassword records a pending reset for the user, replacing any earlier
// one, and hands the raw token to the notifier.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (ForgotPasswordResult, error) {
	email = normalizeEmail(email)
	if err := validateStruct(s.validate, emailInput{Email: email}); err != nil {
		return ForgotPasswordResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ForgotPasswordResult{}, ErrUserNotFound
		}
		return ForgotPasswordResult{}, s.internal(err, "forgot password lookup failed")
	}

	token, err := security.IssueResetToken()
	if err != nil {
		return ForgotPasswordResult{}, s.internal(err, "issue reset token failed")
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.ResetTTL)

	// Deliver before storing: a failed delivery leaves any earlier pending
	// reset usable.
	if err := s.notifier.SendPasswordReset(ctx, notify.PasswordResetMessage{
		UserID:    user.ID,
		To:        user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt,
	}); err != nil {
		return ForgotPasswordResult{}, s.internal(err, "deliver reset token failed")
	}

	if err := s.users.SetPendingReset(ctx, user.ID, models.PasswordReset{
		TokenHash: security.HashToken(token),
		ExpiresAt: expiresAt,
	}, now); err != nil {
		return ForgotPasswordResult{}, s.internal(err, "save pending reset failed")
	}

	result := ForgotPasswordResult{ExpiresAt: expiresAt}
	if s.cfg.ExposeResetToken {
		result.ResetToken = token
	}
	return result, nil
}

// ResetPassword consumes a pending reset and revokes every refresh token the
// user holds. Tokens are revoked before the reset is consumed, so a failure
// at either step leaves the reset token valid for a retry.
func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := validateStruct(s.validate, input); err != nil {
		return err
	}

	now := s.now()
	resetHash := security.HashToken(input.Token)
	user, err := s.users.FindByResetHash(ctx, resetHash, now)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return s.internal(err, "reset lookup failed")
	}

	passwordHash, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return s.internal(err, "hash password failed")
	}

	revoked, err := s.tokens.DeleteByUser(ctx, user.ID)
	if err != nil {
		return s.internal(err, "revoke refresh tokens failed")
	}

	if err := s.users.ConsumeReset(ctx, user.ID, resetHash, passwordHash, now); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return s.internal(err, "save reset password failed")
	}

	s.log.Info().Str("user_id", user.ID).Int64("revoked_sessions", revoked).Msg("password reset")
	return nil
}

func (s *AuthService) internal(err error, msg string) error {
	s.log.Error().Err(err).Msg(msg)
	return apperr.Internal(err)
}
