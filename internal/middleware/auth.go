package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vinay02022/testinBackend/internal/apperr"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/response"
)

const currentUserKey = "current_user"

var (
	errMissingToken = apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided.")
	errInvalidToken = apperr.New(apperr.KindUnauthenticated, "Invalid or expired token.")
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

type Identifier interface {
	Identify(ctx context.Context, userID string) (models.User, error)
}

// Auth resolves the bearer access token to a stored user. It does not
// check permissions; RequirePermission does that.
func Auth(tokens TokenVerifier, users Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, errMissingToken)
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		userID, err := tokens.VerifyAccessToken(tokenStr)
		if err != nil {
			response.Error(c, errInvalidToken)
			return
		}

		user, err := users.Identify(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity set by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, ok := val.(models.User)
	if !ok {
		return nil
	}
	return &user
}
