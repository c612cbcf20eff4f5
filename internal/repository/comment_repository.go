package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vinay02022/testinBackend/internal/database"
	"github.com/vinay02022/testinBackend/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

const commentSelect = `
	SELECT c.id, c.content, c.author_id, c.created_at, c.updated_at, u.name, u.email
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

type CommentRepository struct {
	db database.DBTX
}

func NewCommentRepository(db database.DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) error {
	const query = `
		INSERT INTO comments (id, content, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.Content,
		comment.AuthorID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	return err
}

// List returns every comment, newest first, with its author populated.
func (r *CommentRepository) List(ctx context.Context) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (models.Comment, error) {
	comment, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Comment{}, ErrCommentNotFound
	}
	return comment, err
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var (
		comment models.Comment
		author  models.Author
	)
	if err := row.Scan(
		&comment.ID,
		&comment.Content,
		&comment.AuthorID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&author.Name,
		&author.Email,
	); err != nil {
		return models.Comment{}, err
	}
	author.ID = comment.AuthorID
	comment.Author = &author
	return comment, nil
}
