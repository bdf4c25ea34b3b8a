package repository

import (
	"context"
	"time"

	"parasocial/internal/models"

	"gorm.io/gorm"
)

// BlockRepository defines the interface for block-edge data operations
type BlockRepository interface {
	Create(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, blockerID, blockedID uint) error
	Exists(ctx context.Context, blockerID, blockedID uint) (bool, error)
	// ExistsBetween reports whether a block exists in either direction.
	ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error)
	ListByBlocker(ctx context.Context, blockerID uint, limit, offset int) ([]models.Block, error)
}

// blockRepository implements BlockRepository
type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Create(ctx context.Context, block *models.Block) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO blocks (blocker_id, blocked_id, reason, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (blocker_id, blocked_id) DO NOTHING`,
		block.BlockerID, block.BlockedID, block.Reason, time.Now().UTC(),
	).Error
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID uint) error {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Block", blockedID)
	}
	return nil
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *blockRepository) ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userID1, userID2, userID2, userID1).
		Count(&count).Error
	return count > 0, err
}

func (r *blockRepository) ListByBlocker(ctx context.Context, blockerID uint, limit, offset int) ([]models.Block, error) {
	var blocks []models.Block
	err := readDB(r.db).WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Preload("Blocked").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&blocks).Error
	return blocks, err
}
