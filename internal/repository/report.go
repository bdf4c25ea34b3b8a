package repository

import (
	"context"
	"errors"

	"parasocial/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the interface for moderation report data operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error)
	ListByReporter(ctx context.Context, reporterID uint, limit, offset int) ([]models.Report, error)
	// UpdateStatus moves an open report to a terminal status. The write is
	// conditioned on the report still being open so concurrent moderators
	// cannot both resolve it; returns false when the report was already
	// closed.
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, note string) (bool, error)
	CountOpenAgainstUser(ctx context.Context, reportedUserID uint) (int64, error)
}

// reportRepository implements ReportRepository
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("ReportedUser").
		First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := readDB(r.db).WithContext(ctx).
		Where("status = ?", status).
		Preload("Reporter").
		Preload("ReportedUser").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID uint, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := readDB(r.db).WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, note string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusOpen).
		Updates(map[string]interface{}{
			"status":         status,
			"moderator_note": note,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *reportRepository) CountOpenAgainstUser(ctx context.Context, reportedUserID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Report{}).
		Where("reported_user_id = ? AND status = ?", reportedUserID, models.ReportStatusOpen).
		Count(&count).Error
	return count, err
}
