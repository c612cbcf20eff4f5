package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinay02022/testinBackend/internal/models"
)

var commentRowColumns = []string{"id", "content", "author_id", "created_at", "updated_at", "name", "email"}

func TestCommentRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCommentRepository(mock)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO comments`).
		WithArgs("c1", "hello", "u1", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), models.Comment{
		ID: "c1", Content: "hello", AuthorID: "u1", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
}

func TestCommentRepository_List(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCommentRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM comments c\s+JOIN users u .* ORDER BY c.created_at DESC`).
		WillReturnRows(pgxmock.NewRows(commentRowColumns).
			AddRow("c2", "second", "u2", now, now, "Bob", "bob@x.com").
			AddRow("c1", "first", "u1", now.Add(-time.Minute), now.Add(-time.Minute), "Alice", "alice@x.com"))

	comments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c2", comments[0].ID)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "Bob", comments[0].Author.Name)
	assert.Equal(t, "u2", comments[0].Author.ID)
}

func TestCommentRepository_GetByIDMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCommentRepository(mock)

	mock.ExpectQuery(`WHERE c.id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentRepository_Delete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCommentRepository(mock)

	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c1"), ErrCommentNotFound)
}
