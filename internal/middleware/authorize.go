package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/response"
	"github.com/vinay02022/testinBackend/internal/service"
)

func RequirePermission(required models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Authorize(CurrentUser(c), required); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}
