package service

import (
	"context"
	"fmt"

	"parasocial/internal/models"
	"parasocial/internal/repository"

	"github.com/google/uuid"
)

type ReportService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
}

type CreateReportInput struct {
	ReporterID     uint
	ReportedUserID uint
	PostID         *uint
	Reason         string
	Description    string
}

type ResolveReportInput struct {
	ModeratorID   uint
	ReportID      uint
	Status        models.ReportStatus
	ModeratorNote string
}

func NewReportService(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		postRepo:   postRepo,
	}
}

func (s *ReportService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if in.ReporterID == in.ReportedUserID {
		return nil, models.NewValidationError("You cannot report yourself")
	}
	if !models.ValidReportReason(in.Reason) {
		return nil, models.NewValidationError("Invalid report reason")
	}
	const maxDescriptionLen = 2000
	if len(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 2000 characters)")
	}

	if _, err := s.userRepo.GetByID(ctx, in.ReportedUserID); err != nil {
		return nil, err
	}
	if in.PostID != nil {
		post, err := s.postRepo.GetByID(ctx, *in.PostID, in.ReporterID)
		if err != nil {
			return nil, err
		}
		if post.UserID != in.ReportedUserID {
			return nil, models.NewValidationError("Reported post does not belong to the reported user")
		}
	}

	report := &models.Report{
		Reference:      fmt.Sprintf("rpt_%s", uuid.NewString()),
		ReporterID:     in.ReporterID,
		ReportedUserID: in.ReportedUserID,
		PostID:         in.PostID,
		Reason:         in.Reason,
		Description:    in.Description,
		Status:         models.ReportStatusOpen,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *ReportService) ListOpenReports(ctx context.Context, limit, offset int) ([]models.Report, error) {
	return s.reportRepo.ListByStatus(ctx, models.ReportStatusOpen, limit, offset)
}

func (s *ReportService) ListMyReports(ctx context.Context, reporterID uint, limit, offset int) ([]models.Report, error) {
	return s.reportRepo.ListByReporter(ctx, reporterID, limit, offset)
}

// ResolveReport moves an open report to resolved or dismissed. The underlying
// write is conditional on the report still being open, so two moderators
// racing on the same report cannot both win; the loser gets a conflict error.
func (s *ReportService) ResolveReport(ctx context.Context, in ResolveReportInput) (*models.Report, error) {
	switch in.Status {
	case models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return nil, models.NewValidationError("Status must be resolved or dismissed")
	}

	updated, err := s.reportRepo.UpdateStatus(ctx, in.ReportID, in.Status, in.ModeratorNote)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Either the report does not exist or it was already closed.
		if _, err := s.reportRepo.GetByID(ctx, in.ReportID); err != nil {
			return nil, err
		}
		return nil, models.NewConflictError("Report has already been reviewed")
	}
	return s.reportRepo.GetByID(ctx, in.ReportID)
}

func (s *ReportService) OpenReportCount(ctx context.Context, reportedUserID uint) (int64, error) {
	return s.reportRepo.CountOpenAgainstUser(ctx, reportedUserID)
}
