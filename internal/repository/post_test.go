package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_SelectDue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("Returns Due Posts Oldest First", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "title", "is_scheduled", "is_published", "scheduled_for"}).
			AddRow(7, 2, "first due", true, false, now.Add(-2*time.Hour)).
			AddRow(9, 3, "second due", true, false, now.Add(-time.Minute))
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE is_scheduled = \$1 AND is_published = \$2 AND scheduled_for <= \$3 AND "posts"\."deleted_at" IS NULL ORDER BY scheduled_for ASC LIMIT \$4`).
			WithArgs(true, false, now, 50).
			WillReturnRows(rows)

		posts, err := repo.SelectDue(ctx, now, 50)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, uint(7), posts[0].ID)
		assert.Equal(t, uint(9), posts[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Backlog", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE is_scheduled = \$1 AND is_published = \$2 AND scheduled_for <= \$3`).
			WithArgs(true, false, now, 10).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		posts, err := repo.SelectDue(ctx, now, 10)
		require.NoError(t, err)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "posts"`).
			WillReturnError(errors.New("connection refused"))

		posts, err := repo.SelectDue(ctx, now, 50)
		assert.Error(t, err)
		assert.Nil(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_PublishDue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("Publishes When Still Eligible", func(t *testing.T) {
		mock.ExpectExec(`UPDATE posts\s+SET is_published = \$1, published_at = \$2, updated_at = \$3\s+WHERE id = \$4\s+AND is_scheduled = \$5\s+AND is_published = \$6\s+AND scheduled_for <= \$7\s+AND deleted_at IS NULL`).
			WithArgs(true, now, now, 7, true, false, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		published, err := repo.PublishDue(ctx, 7, now)
		require.NoError(t, err)
		assert.True(t, published)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lost Race Is Not An Error", func(t *testing.T) {
		// Another sweeper already flipped the row: zero rows affected.
		mock.ExpectExec(`UPDATE posts`).
			WithArgs(true, now, now, 7, true, false, now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		published, err := repo.PublishDue(ctx, 7, now)
		require.NoError(t, err)
		assert.False(t, published)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE posts`).
			WillReturnError(errors.New("connection reset"))

		published, err := repo.PublishDue(ctx, 7, now)
		assert.Error(t, err)
		assert.False(t, published)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_CountDue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE is_scheduled = \$1 AND is_published = \$2 AND scheduled_for <= \$3`).
		WithArgs(true, false, now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO likes .*ON CONFLICT \(user_id, post_id\) DO NOTHING`).
			WithArgs(1, 7, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Like(ctx, 1, 7)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Like Is Idempotent", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO likes`).
			WithArgs(1, 7, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Like(ctx, 1, 7)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_List_FiltersUnpublished(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "is_published", "likes_count", "liked"}).
		AddRow(1, 2, "live post", true, 4, false)
	mock.ExpectQuery(`SELECT posts\.\*, .*likes_count.* FROM "posts" WHERE posts\.is_published = \$1`).
		WillReturnRows(rows)
	// Preloaded author lookup.
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "author"))

	posts, err := repo.List(context.Background(), 20, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].IsPublished)
	assert.Equal(t, 4, posts[0].LikesCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadDBFallsBackToPrimary(t *testing.T) {
	db, _ := setupMockDB(t)
	assert.Same(t, db, readDB(db))
}
