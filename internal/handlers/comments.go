package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vinay02022/testinBackend/internal/middleware"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/response"
	"github.com/vinay02022/testinBackend/internal/service"
)

type commentRequest struct {
	Content string `json:"content"`
}

type authorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type commentResponse struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Author    *authorResponse `json:"author"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toCommentResponse(comment models.Comment) commentResponse {
	resp := commentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.Author != nil {
		resp.Author = &authorResponse{
			ID:    comment.Author.ID,
			Name:  comment.Author.Name,
			Email: comment.Author.Email,
		}
	}
	return resp
}

func (h HandlerSet) ListComments(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		resp = append(resp, toCommentResponse(comment))
	}

	response.OK(c, "", gin.H{
		"comments": resp,
		"count":    len(resp),
	})
}

func (h HandlerSet) GetComment(c *gin.Context) {
	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"comment": toCommentResponse(comment)})
}

func (h HandlerSet) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, service.ErrUnauthenticated)
		return
	}

	var req commentRequest
	if !bind(c, &req) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), *user, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Comment created successfully", gin.H{"comment": toCommentResponse(comment)})
}

func (h HandlerSet) DeleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Comment deleted successfully", nil)
}
