package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/apperr"
	"github.com/vinay02022/testinBackend/internal/ids"
	"github.com/vinay02022/testinBackend/internal/models"
	"github.com/vinay02022/testinBackend/internal/repository"
)

var ErrCommentNotFound = apperr.New(apperr.KindNotFound, "Comment not found")

type CommentService struct {
	comments CommentStore
	log      zerolog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewCommentService(comments CommentStore, log zerolog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
}

type commentInput struct {
	Content string `json:"content" validate:"required,commentmax"`
}

func (s *CommentService) List(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.comments.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list comments failed")
		return nil, apperr.Internal(err)
	}
	return comments, nil
}

func (s *CommentService) Get(ctx context.Context, id string) (models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return models.Comment{}, s.mapErr(err, id, "get comment failed")
	}
	return comment, nil
}

func (s *CommentService) Create(ctx context.Context, author models.User, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateStruct(s.validate, commentInput{Content: content}); err != nil {
		return models.Comment{}, err
	}

	now := s.now()
	comment := models.Comment{
		ID:        ids.New(),
		Content:   content,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.log.Error().Err(err).Str("author_id", author.ID).Msg("create comment failed")
		return models.Comment{}, apperr.Internal(err)
	}

	comment.Author = &models.Author{ID: author.ID, Name: author.Name, Email: author.Email}
	return comment, nil
}

// Delete removes any comment; the delete permission, not ownership, grants it.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return s.mapErr(err, id, "delete comment failed")
	}
	return nil
}

func (s *CommentService) mapErr(err error, id string, msg string) error {
	if errors.Is(err, repository.ErrCommentNotFound) {
		return ErrCommentNotFound
	}
	s.log.Error().Err(err).Str("comment_id", id).Msg(msg)
	return apperr.Internal(err)
}
