package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/notify"
	"github.com/vinay02022/testinBackend/internal/repository"
	"github.com/vinay02022/testinBackend/internal/security"
	"github.com/vinay02022/testinBackend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	store  *repository.Memory
	codec  *security.TokenCodec
}

func newTestAPI(t *testing.T, probes Probes) *testAPI {
	t.Helper()
	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTAccessSecret:  "handler-secret",
			JWTAccessTTL:     15 * time.Minute,
			RefreshTTL:       24 * time.Hour,
			ResetTTL:         time.Hour,
			ExposeResetToken: true,
		},
	}
	log := zerolog.Nop()
	store := repository.NewMemory()
	codec := security.NewTokenCodec(cfg.Security.JWTAccessSecret, cfg.Security.JWTAccessTTL)

	h := NewHandlerSet(log, cfg, Services{
		Auth:     service.NewAuthService(store.Users(), store.RefreshTokens(), codec, notify.NewLogNotifier(log), cfg.Security, log),
		Users:    service.NewUserService(store.Users(), log),
		Comments: service.NewCommentService(store.Comments(), log),
		Tokens:   codec,
	}, probes)

	router := gin.New()
	h.Register(router.Group("/api"))
	return &testAPI{router: router, store: store, codec: codec}
}

// seed stores a user directly and returns an access token for it.
func (a *testAPI) seed(t *testing.T, id string, perms ...models.Permission) string {
	t.Helper()
	require.NoError(t, a.store.Users().Create(context.Background(), models.User{
		ID:           id,
		Name:         id,
		Email:        id + "@x.com",
		PasswordHash: []byte("unused"),
		Permissions:  models.NewPermissionSet(perms...),
	}))
	token, err := a.codec.IssueAccessToken(id)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (a *testAPI) call(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAuthFlow_EndToEnd(t *testing.T) {
	api := newTestAPI(t, Probes{})

	code, env := api.call(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alice", "email": "alice@x.com", "password": "Password123",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	signup := decode[authResponse](t, env.Data)
	assert.Equal(t, "alice@x.com", signup.User.Email)
	assert.Equal(t, []string{}, signup.User.Permissions)

	code, env = api.call(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alice", "email": "alice@x.com", "password": "Password123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already exists with this email", env.Message)

	code, env = api.call(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@x.com", "password": "Password123",
	})
	require.Equal(t, http.StatusOK, code)
	login := decode[authResponse](t, env.Data)
	assert.NotEqual(t, signup.RefreshToken, login.RefreshToken)

	code, env = api.call(t, http.MethodPost, "/api/auth/logout", "", gin.H{"refreshToken": signup.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logout successful", env.Message)

	code, env = api.call(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": signup.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid refresh token", env.Message)

	code, env = api.call(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	refreshed := decode[map[string]string](t, env.Data)
	assert.NotEmpty(t, refreshed["accessToken"])

	code, env = api.call(t, http.MethodGet, "/api/users/profile", refreshed["accessToken"], nil)
	require.Equal(t, http.StatusOK, code)
	profile := decode[map[string]userResponse](t, env.Data)
	assert.Equal(t, signup.User.ID, profile["user"].ID)
}

func TestLogin_UniformFailure(t *testing.T) {
	api := newTestAPI(t, Probes{})

	code, env := api.call(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "nobody@x.com", "password": "Password123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", env.Message)
}

func TestSignup_ValidationErrors(t *testing.T) {
	api := newTestAPI(t, Probes{})

	code, env := api.call(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "A", "email": "bad", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)

	fields := map[string]bool{}
	for _, e := range env.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestMalformedBody(t *testing.T) {
	api := newTestAPI(t, Probes{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestPasswordReset(t *testing.T) {
	api := newTestAPI(t, Probes{})

	code, _ := api.call(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alice", "email": "alice@x.com", "password": "Password123",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := api.call(t, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found with this email", env.Message)

	code, env = api.call(t, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "alice@x.com"})
	require.Equal(t, http.StatusOK, code)
	forgot := decode[forgotPasswordResponse](t, env.Data)
	require.NotEmpty(t, forgot.ResetToken)

	code, env = api.call(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"token": "wrong", "newPassword": "NewPass456",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid or expired reset token", env.Message)

	code, _ = api.call(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"token": forgot.ResetToken, "newPassword": "NewPass456",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = api.call(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@x.com", "password": "NewPass456",
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestComments_PermissionGate(t *testing.T) {
	api := newTestAPI(t, Probes{})
	alice := api.seed(t, "alice", models.PermissionRead, models.PermissionWrite)
	bob := api.seed(t, "bob", models.PermissionRead, models.PermissionDelete)
	charlie := api.seed(t, "charlie")

	code, env := api.call(t, http.MethodPost, "/api/comments", alice, gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, code)
	created := decode[map[string]commentResponse](t, env.Data)["comment"]
	require.NotNil(t, created.Author)
	assert.Equal(t, "alice@x.com", created.Author.Email)

	code, env = api.call(t, http.MethodPost, "/api/comments", bob, gin.H{"content": "nope"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied. write permission required.", env.Message)

	code, _ = api.call(t, http.MethodGet, "/api/comments", charlie, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.call(t, http.MethodGet, "/api/comments", bob, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[struct {
		Comments []commentResponse `json:"comments"`
		Count    int               `json:"count"`
	}](t, env.Data)
	assert.Equal(t, 1, list.Count)

	code, _ = api.call(t, http.MethodGet, "/api/comments/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.call(t, http.MethodDelete, "/api/comments/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.call(t, http.MethodDelete, "/api/comments/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.call(t, http.MethodDelete, "/api/comments/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Comment not found", env.Message)

	code, _ = api.call(t, http.MethodGet, "/api/comments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUpdatePermissions(t *testing.T) {
	api := newTestAPI(t, Probes{})
	caller := api.seed(t, "caller")
	api.seed(t, "target", models.PermissionRead)

	code, env := api.call(t, http.MethodPut, "/api/users/target/permissions", caller, gin.H{
		"permissions": []string{"read", "admin"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid permissions: admin. Valid permissions are: read, write, delete", env.Message)

	code, env = api.call(t, http.MethodPut, "/api/users/target/permissions", caller, gin.H{
		"permissions": []string{"delete", "read", "read"},
	})
	require.Equal(t, http.StatusOK, code)
	updated := decode[map[string]userResponse](t, env.Data)["user"]
	assert.Equal(t, []string{"read", "delete"}, updated.Permissions)

	code, _ = api.call(t, http.MethodPut, "/api/users/missing/permissions", caller, gin.H{
		"permissions": []string{"read"},
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.call(t, http.MethodPut, "/api/users/target/permissions", "", gin.H{
		"permissions": []string{"read"},
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, Probes{
		Database: func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Database)
	assert.Equal(t, "disabled", resp.Cache)

	api = newTestAPI(t, Probes{
		Database: func(context.Context) error { return errors.New("down") },
	})
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
