package service

import (
	"context"

	"parasocial/internal/models"
	"parasocial/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	blockRepo  repository.BlockRepository
	userRepo   repository.UserRepository
}

func NewFollowService(
	followRepo repository.FollowRepository,
	blockRepo repository.BlockRepository,
	userRepo repository.UserRepository,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		blockRepo:  blockRepo,
		userRepo:   userRepo,
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot follow yourself")
	}

	// Target must exist; GetByID returns a not-found AppError otherwise.
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	blocked, err := s.blockRepo.ExistsBetween(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewForbiddenError("You cannot follow this user")
	}

	return s.followRepo.Create(ctx, &models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	})
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	return s.followRepo.Delete(ctx, followerID, followeeID)
}

func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followRepo.Followers(ctx, userID, limit, offset)
}

func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followRepo.Following(ctx, userID, limit, offset)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

// Block creates a block edge and severs follow relationships in both
// directions, so a blocked user silently drops out of both feeds.
func (s *FollowService) Block(ctx context.Context, blockerID, blockedID uint, reason string) error {
	if blockerID == blockedID {
		return models.NewValidationError("You cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return err
	}

	if err := s.blockRepo.Create(ctx, &models.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
	}); err != nil {
		return err
	}
	return s.followRepo.DeleteBetween(ctx, blockerID, blockedID)
}

func (s *FollowService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.blockRepo.Delete(ctx, blockerID, blockedID)
}

func (s *FollowService) BlockedUsers(ctx context.Context, blockerID uint, limit, offset int) ([]models.Block, error) {
	return s.blockRepo.ListByBlocker(ctx, blockerID, limit, offset)
}
