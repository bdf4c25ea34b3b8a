package service

import (
	"context"
	"testing"

	"parasocial/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportRepoStub is a stub for repository.ReportRepository.
type reportRepoStub struct {
	createFn               func(context.Context, *models.Report) error
	getByIDFn              func(context.Context, uint) (*models.Report, error)
	listByStatusFn         func(context.Context, models.ReportStatus, int, int) ([]models.Report, error)
	listByReporterFn       func(context.Context, uint, int, int) ([]models.Report, error)
	updateStatusFn         func(context.Context, uint, models.ReportStatus, string) (bool, error)
	countOpenAgainstUserFn func(context.Context, uint) (int64, error)
}

func (s *reportRepoStub) Create(ctx context.Context, r *models.Report) error {
	return s.createFn(ctx, r)
}
func (s *reportRepoStub) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	return s.getByIDFn(ctx, id)
}
func (s *reportRepoStub) ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}
func (s *reportRepoStub) ListByReporter(ctx context.Context, reporterID uint, limit, offset int) ([]models.Report, error) {
	return s.listByReporterFn(ctx, reporterID, limit, offset)
}
func (s *reportRepoStub) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, note string) (bool, error) {
	return s.updateStatusFn(ctx, id, status, note)
}
func (s *reportRepoStub) CountOpenAgainstUser(ctx context.Context, reportedUserID uint) (int64, error) {
	return s.countOpenAgainstUserFn(ctx, reportedUserID)
}

func noopReportRepo() *reportRepoStub {
	return &reportRepoStub{
		createFn:  func(_ context.Context, _ *models.Report) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Report, error) { return &models.Report{ID: id}, nil },
		listByStatusFn: func(_ context.Context, _ models.ReportStatus, _, _ int) ([]models.Report, error) {
			return nil, nil
		},
		listByReporterFn: func(_ context.Context, _ uint, _, _ int) ([]models.Report, error) { return nil, nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.ReportStatus, _ string) (bool, error) {
			return true, nil
		},
		countOpenAgainstUserFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

func TestReportService_CreateReport(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var created *models.Report
		reportRepo := noopReportRepo()
		reportRepo.createFn = func(_ context.Context, r *models.Report) error {
			r.ID = 1
			created = r
			return nil
		}

		svc := NewReportService(reportRepo, noopUserRepo(), noopPostRepo())
		report, err := svc.CreateReport(context.Background(), CreateReportInput{
			ReporterID:     1,
			ReportedUserID: 2,
			Reason:         models.ReportReasonSpam,
			Description:    "spamming the feed",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusOpen, report.Status)
		assert.NotEmpty(t, created.Reference)
		assert.Contains(t, created.Reference, "rpt_")
	})

	t.Run("Self Report Rejected", func(t *testing.T) {
		svc := NewReportService(noopReportRepo(), noopUserRepo(), noopPostRepo())
		_, err := svc.CreateReport(context.Background(), CreateReportInput{
			ReporterID:     1,
			ReportedUserID: 1,
			Reason:         models.ReportReasonSpam,
		})
		assert.Error(t, err)
	})

	t.Run("Invalid Reason Rejected", func(t *testing.T) {
		svc := NewReportService(noopReportRepo(), noopUserRepo(), noopPostRepo())
		_, err := svc.CreateReport(context.Background(), CreateReportInput{
			ReporterID:     1,
			ReportedUserID: 2,
			Reason:         "vibes",
		})
		assert.Error(t, err)
	})

	t.Run("Post Must Belong To Reported User", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 99}, nil
		}

		svc := NewReportService(noopReportRepo(), noopUserRepo(), postRepo)
		postID := uint(7)
		_, err := svc.CreateReport(context.Background(), CreateReportInput{
			ReporterID:     1,
			ReportedUserID: 2,
			PostID:         &postID,
			Reason:         models.ReportReasonHarassment,
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestReportService_ResolveReport(t *testing.T) {
	t.Run("Resolves Open Report", func(t *testing.T) {
		svc := NewReportService(noopReportRepo(), noopUserRepo(), noopPostRepo())
		report, err := svc.ResolveReport(context.Background(), ResolveReportInput{
			ModeratorID:   9,
			ReportID:      1,
			Status:        models.ReportStatusResolved,
			ModeratorNote: "user warned",
		})
		require.NoError(t, err)
		assert.Equal(t, uint(1), report.ID)
	})

	t.Run("Already Reviewed Conflicts", func(t *testing.T) {
		reportRepo := noopReportRepo()
		reportRepo.updateStatusFn = func(_ context.Context, _ uint, _ models.ReportStatus, _ string) (bool, error) {
			return false, nil
		}

		svc := NewReportService(reportRepo, noopUserRepo(), noopPostRepo())
		_, err := svc.ResolveReport(context.Background(), ResolveReportInput{
			ReportID: 1,
			Status:   models.ReportStatusDismissed,
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	t.Run("Missing Report Is Not Found", func(t *testing.T) {
		reportRepo := noopReportRepo()
		reportRepo.updateStatusFn = func(_ context.Context, _ uint, _ models.ReportStatus, _ string) (bool, error) {
			return false, nil
		}
		reportRepo.getByIDFn = func(_ context.Context, id uint) (*models.Report, error) {
			return nil, models.NewNotFoundError("Report", id)
		}

		svc := NewReportService(reportRepo, noopUserRepo(), noopPostRepo())
		_, err := svc.ResolveReport(context.Background(), ResolveReportInput{
			ReportID: 42,
			Status:   models.ReportStatusResolved,
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("Open Is Not A Valid Target Status", func(t *testing.T) {
		svc := NewReportService(noopReportRepo(), noopUserRepo(), noopPostRepo())
		_, err := svc.ResolveReport(context.Background(), ResolveReportInput{
			ReportID: 1,
			Status:   models.ReportStatusOpen,
		})
		assert.Error(t, err)
	})
}
