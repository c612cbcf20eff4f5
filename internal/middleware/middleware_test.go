package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/security"
	"github.com/vinay02022/testinBackend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers map[string]models.User

func (s stubUsers) Identify(_ context.Context, userID string) (models.User, error) {
	user, ok := s[userID]
	if !ok {
		return models.User{}, service.ErrUnauthenticated
	}
	return user, nil
}

func newRouter(codec *security.TokenCodec, users stubUsers, perm models.Permission) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()))
	r.GET("/protected", Auth(codec, users), RequirePermission(perm), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).ID)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestAuthAndPermission(t *testing.T) {
	codec := security.NewTokenCodec("secret", time.Minute)
	users := stubUsers{
		"reader": {ID: "reader", Permissions: models.NewPermissionSet(models.PermissionRead)},
		"writer": {ID: "writer", Permissions: models.NewPermissionSet(models.PermissionRead, models.PermissionWrite)},
	}
	r := newRouter(codec, users, models.PermissionWrite)

	writerToken, err := codec.IssueAccessToken("writer")
	require.NoError(t, err)
	readerToken, err := codec.IssueAccessToken("reader")
	require.NoError(t, err)
	ghostToken, err := codec.IssueAccessToken("ghost")
	require.NoError(t, err)

	rec := do(r, writerToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "writer", rec.Body.String())

	rec = do(r, readerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. write permission required.", message(t, rec))

	rec = do(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access denied. No token provided.", message(t, rec))

	rec = do(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token.", message(t, rec))

	rec = do(r, ghostToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ForeignSecret(t *testing.T) {
	r := newRouter(security.NewTokenCodec("secret", time.Minute), stubUsers{"u": {ID: "u"}}, models.PermissionRead)

	forged, err := security.NewTokenCodec("other", time.Minute).IssueAccessToken("u")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, forged).Code)
}

func TestRequirePermission_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/", RequirePermission(models.PermissionRead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required.", message(t, rec))
}

func TestRecovery(t *testing.T) {
	r := newRouter(security.NewTokenCodec("secret", time.Minute), nil, models.PermissionRead)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", message(t, rec))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestID_PassThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
