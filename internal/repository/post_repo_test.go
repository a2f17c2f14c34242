package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postCols = []string{
	"id", "text", "pub_date", "author_id",
	"username", "first_name", "last_name",
	"group_id", "title", "slug",
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestPostRepository_List(t *testing.T) {
	mock := withMock(t)
	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(postCols).
		AddRow(2, "second", newer, 1, "leo", "Leo", "", intPtr(3), strPtr("Cats"), strPtr("cats")).
		AddRow(1, "first", older, 1, "leo", "Leo", "", nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.pub_date DESC, p.id DESC LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(rows)

	posts, err := repository.NewPostRepository().List(context.Background(), 10, 0)

	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "second", posts[0].Text)
	assert.Equal(t, 1, posts[0].Author.ID)
	assert.Equal(t, "leo", posts[0].Author.Username)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, 3, posts[0].Group.ID)
	assert.Equal(t, "cats", posts[0].Group.Slug)

	assert.Nil(t, posts[1].GroupID)
	assert.Nil(t, posts[1].Group)
	assert.True(t, posts[0].PubDate.After(posts[1].PubDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListEmpty(t *testing.T) {
	mock := withMock(t)
	mock.ExpectQuery("FROM posts p").
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows(postCols))

	posts, err := repository.NewPostRepository().List(context.Background(), 10, 0)

	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_ListByGroup(t *testing.T) {
	mock := withMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.group_id = $1")).
		WithArgs(3, 10, 10).
		WillReturnRows(pgxmock.NewRows(postCols).
			AddRow(11, "in group", time.Now(), 1, "leo", "", "", intPtr(3), strPtr("Cats"), strPtr("cats")))

	posts, err := repository.NewPostRepository().ListByGroup(context.Background(), 3, 10, 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 3, *posts[0].GroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListByAuthor(t *testing.T) {
	mock := withMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.author_id = $1")).
		WithArgs(1, 10, 0).
		WillReturnRows(pgxmock.NewRows(postCols).
			AddRow(4, "mine", time.Now(), 1, "leo", "", "", nil, nil, nil))

	posts, err := repository.NewPostRepository().ListByAuthor(context.Background(), 1, 10, 0)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "leo", posts[0].Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Counts(t *testing.T) {
	mock := withMock(t)
	repo := repository.NewPostRepository()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(13))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts WHERE group_id = $1")).
		WithArgs(3).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts WHERE author_id = $1")).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(9))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	n, err = repo.CountByGroup(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = repo.CountByAuthor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := withMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WithArgs(5).
			WillReturnRows(pgxmock.NewRows(postCols).
				AddRow(5, "Тестовый пост для проверки", time.Now(), 2, "anna", "Anna", "K", nil, nil, nil))

		post, err := repository.NewPostRepository().GetByID(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, 2, post.AuthorID)
		assert.Equal(t, "Anna K", post.Author.FullName())
		assert.Equal(t, "Тестовый пост д", post.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock := withMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WithArgs(404).
			WillReturnError(pgx.ErrNoRows)

		post, err := repository.NewPostRepository().GetByID(context.Background(), 404)

		assert.ErrorIs(t, err, repository.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostRepository_Create(t *testing.T) {
	pub := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		groupID *int
	}{
		{"with group", intPtr(3)},
		{"without group", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := withMock(t)
			mock.ExpectQuery("INSERT INTO posts").
				WithArgs("hello", 1, tt.groupID).
				WillReturnRows(pgxmock.NewRows([]string{"id", "pub_date"}).AddRow(42, pub))

			post := &models.Post{Text: "hello", AuthorID: 1, GroupID: tt.groupID}
			require.NoError(t, repository.NewPostRepository().Create(context.Background(), post))

			assert.Equal(t, 42, post.ID)
			assert.Equal(t, pub, post.PubDate)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_CreateError(t *testing.T) {
	mock := withMock(t)
	boom := errors.New("violates foreign key")
	mock.ExpectQuery("INSERT INTO posts").
		WithArgs("hello", 1, pgxmock.AnyArg()).
		WillReturnError(boom)

	err := repository.NewPostRepository().Create(context.Background(), &models.Post{Text: "hello", AuthorID: 1})
	assert.ErrorIs(t, err, boom)
}

// TestPostRepository_Update verifies edits touch only text and group.
func TestPostRepository_Update(t *testing.T) {
	t.Run("updated in place", func(t *testing.T) {
		mock := withMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET text = $1, group_id = $2 WHERE id = $3")).
			WithArgs("edited", (*int)(nil), 5).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		post := &models.Post{ID: 5, Text: "edited"}
		assert.NoError(t, repository.NewPostRepository().Update(context.Background(), post))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing post", func(t *testing.T) {
		mock := withMock(t)
		mock.ExpectExec("UPDATE posts").
			WithArgs("edited", intPtr(2), 6).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		post := &models.Post{ID: 6, Text: "edited", GroupID: intPtr(2)}
		assert.ErrorIs(t, repository.NewPostRepository().Update(context.Background(), post), repository.ErrPostNotFound)
	})
}
