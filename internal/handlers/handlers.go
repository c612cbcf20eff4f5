package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/apperr"
	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/middleware"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/response"
	"github.com/vinay02022/testinBackend/internal/security"
	"github.com/vinay02022/testinBackend/internal/service"
)

// Probe reports whether a backing dependency is reachable.
type Probe func(ctx context.Context) error

type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Comments *service.CommentService
	Tokens   *security.TokenCodec
}

// Probes are optional; a nil probe is reported as disabled.
type Probes struct {
	Database Probe
	Cache    Probe
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	users    *service.UserService
	comments *service.CommentService
	tokens   *security.TokenCodec
	probes   Probes
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, probes Probes) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     svc.Auth,
		users:    svc.Users,
		comments: svc.Comments,
		tokens:   svc.Tokens,
		probes:   probes,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	auth := router.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)

	authenticated := middleware.Auth(h.tokens, h.users)

	users := router.Group("/users", authenticated)
	users.GET("/profile", h.Profile)
	users.PUT("/:id/permissions", h.UpdatePermissions)

	comments := router.Group("/comments", authenticated)
	comments.GET("", middleware.RequirePermission(models.PermissionRead), h.ListComments)
	comments.GET("/:id", middleware.RequirePermission(models.PermissionRead), h.GetComment)
	comments.POST("", middleware.RequirePermission(models.PermissionWrite), h.CreateComment)
	comments.DELETE("/:id", middleware.RequirePermission(models.PermissionDelete), h.DeleteComment)
}

var errBadBody = apperr.New(apperr.KindValidation, "Invalid request body")

// bind decodes the JSON body; field rules are enforced by the services.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, errBadBody)
		return false
	}
	return true
}
