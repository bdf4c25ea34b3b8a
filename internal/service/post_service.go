package service

import (
	"context"
	"time"

	"parasocial/internal/cache"
	"parasocial/internal/models"
	"parasocial/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	now      func() time.Time
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
	// ScheduledFor, when set, creates the post unpublished with a pending
	// release at the given instant. Nil means publish immediately.
	ScheduledFor *time.Time
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		isAdmin:  isAdmin,
		now:      time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxTitleLen = 300
	const maxContentLen = 50000 // 50K characters

	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	now := s.now()
	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}

	if in.ScheduledFor != nil {
		// A schedule in the past would just be an immediate publish with extra
		// steps; require callers to be explicit about which one they want.
		if !in.ScheduledFor.After(now) {
			return nil, models.NewValidationError("scheduled_for must be in the future")
		}
		scheduledFor := in.ScheduledFor.UTC()
		post.IsScheduled = true
		post.ScheduledFor = &scheduledFor
	} else {
		post.IsPublished = true
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}
	// A pending scheduled post exists only for its author until released.
	if !post.IsPublished && post.UserID != currentUserID {
		allowed, err := s.isAdminUser(ctx, currentUserID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, models.NewNotFoundError("Post", id)
		}
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	// The anonymous first page is the hottest query in the system; serve it
	// cache-aside.
	if in.CurrentUserID == 0 && in.Offset == 0 && in.Limit <= 20 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.FeedKey, &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, in.Limit, in.Offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}
	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset, currentUserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	// Edits touch the content only. Publication state and the release time are
	// immutable here; rescheduling means deleting and recreating the post.
	post.Title = in.Title
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		allowed, err := s.isAdminUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !allowed {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}
	return s.postRepo.Delete(ctx, in.PostID)
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !post.IsPublished {
		return models.NewNotFoundError("Post", postID)
	}
	return s.postRepo.Like(ctx, userID, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}

func (s *PostService) isAdminUser(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil || userID == 0 {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
