package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vinay02022/testinBackend/internal/middleware"
	"github.com/vinay02022/testinBackend/internal/response"
	"github.com/vinay02022/testinBackend/internal/service"
)

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

func (h HandlerSet) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, service.ErrUnauthenticated)
		return
	}

	response.OK(c, "", gin.H{"user": toUserResponse(*user)})
}

// UpdatePermissions only requires an authenticated caller. Any signed-in
// user can change any user's permissions.
func (h HandlerSet) UpdatePermissions(c *gin.Context) {
	var req permissionsRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.users.UpdatePermissions(c.Request.Context(), c.Param("id"), req.Permissions)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User permissions updated successfully", gin.H{"user": toUserResponse(user)})
}
