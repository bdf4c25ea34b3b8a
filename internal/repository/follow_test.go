package repository

import (
	"context"
	"testing"

	"parasocial/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO follows .*ON CONFLICT \(follower_id, followee_id\) DO NOTHING`).
			WithArgs(1, 2, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(ctx, &models.Follow{FollowerID: 1, FolloweeID: 2})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Follow Is Idempotent", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO follows`).
			WithArgs(1, 2, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Create(ctx, &models.Follow{FollowerID: 1, FolloweeID: 2})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFollowRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "follows" WHERE follower_id = \$1 AND followee_id = \$2`).
			WithArgs(1, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(ctx, 1, 2)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Following", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "follows"`).
			WithArgs(1, 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Delete(ctx, 1, 3)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFollowRepository_DeleteBetween(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "follows" WHERE \(follower_id = \$1 AND followee_id = \$2\) OR \(follower_id = \$3 AND followee_id = \$4\)`).
		WithArgs(1, 2, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.DeleteBetween(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Exists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE follower_id = \$1 AND followee_id = \$2`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepository_ExistsBetween(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlockRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "blocks" WHERE \(blocker_id = \$1 AND blocked_id = \$2\) OR \(blocker_id = \$3 AND blocked_id = \$4\)`).
		WithArgs(1, 2, 2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	blocked, err := repo.ExistsBetween(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBlockRepository(db)

	mock.ExpectExec(`INSERT INTO blocks .*ON CONFLICT \(blocker_id, blocked_id\) DO NOTHING`).
		WithArgs(1, 2, "harassment", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Block{BlockerID: 1, BlockedID: 2, Reason: "harassment"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
