package repository

import (
	"context"
	"testing"

	"parasocial/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_UpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	t.Run("Resolves Open Report", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "reports" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		updated, err := repo.UpdateStatus(ctx, 1, models.ReportStatusResolved, "actioned")
		require.NoError(t, err)
		assert.True(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Closed Report Is Skipped", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "reports"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		updated, err := repo.UpdateStatus(ctx, 1, models.ReportStatusDismissed, "")
		require.NoError(t, err)
		assert.False(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReportRepository_CountOpenAgainstUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "reports" WHERE reported_user_id = \$1 AND status = \$2`).
		WithArgs(9, string(models.ReportStatusOpen)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountOpenAgainstUser(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	report := &models.Report{
		ReporterID:     1,
		ReportedUserID: 2,
		Reason:         models.ReportReasonSpam,
		Status:         models.ReportStatusOpen,
	}
	err := repo.Create(context.Background(), report)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
