// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"parasocial/internal/cache"
	"parasocial/internal/models"
	"parasocial/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
//
// SelectDue and PublishDue together form the store contract of the scheduled
// publication engine: SelectDue picks candidates, PublishDue applies the
// conditional transition.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error

	SelectDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	PublishDue(ctx context.Context, postID uint, now time.Time) (bool, error)
	CountDue(ctx context.Context, now time.Time) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	var err error
	if currentUserID == 0 {
		key := cache.PostKey(id)
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).
				Preload("User").
				First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&post, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID)
	// Pending scheduled posts are visible only to their author.
	if currentUserID != userID {
		q = q.Where("is_published = ?", true)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyVisibility(r.applyPostDetails(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	like := "%" + query + "%"
	err := r.applyVisibility(r.applyPostDetails(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("User").
		Where("title ILIKE ? OR content ILIKE ?", like, like).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch like counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

// applyVisibility restricts feed queries to published posts and, for a
// signed-in viewer, hides posts across block edges in either direction.
func (r *postRepository) applyVisibility(db *gorm.DB, currentUserID uint) *gorm.DB {
	db = db.Where("posts.is_published = ?", true)
	if currentUserID == 0 {
		return db
	}
	return db.Where(
		"NOT EXISTS(SELECT 1 FROM blocks WHERE (blocks.blocker_id = ? AND blocks.blocked_id = posts.user_id) OR (blocks.blocker_id = posts.user_id AND blocks.blocked_id = ?))",
		currentUserID, currentUserID,
	)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING is atomic and prevents duplicate key
	// errors under racing requests.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID, time.Now().UTC(),
	)
	if result.Error == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

// SelectDue returns scheduled, still-unpublished posts whose release time has
// arrived, earliest-due first so a binding limit prioritizes the posts that
// have waited longest.
func (r *postRepository) SelectDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("select_due", "posts")()

	var posts []*models.Post
	err := readDB(r.db).WithContext(ctx).
		Where("is_scheduled = ? AND is_published = ? AND scheduled_for <= ?", true, false, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PublishDue transitions one post to published, conditioned on the post still
// matching the candidate predicate at write time. Returns false when another
// sweep already claimed the post; that is not an error.
func (r *postRepository) PublishDue(ctx context.Context, postID uint, now time.Time) (bool, error) {
	defer observability.TrackQuery("publish_due", "posts")()

	result := r.db.WithContext(ctx).Exec(
		`UPDATE posts
		 SET is_published = ?, published_at = ?, updated_at = ?
		 WHERE id = ?
		   AND is_scheduled = ?
		   AND is_published = ?
		   AND scheduled_for <= ?
		   AND deleted_at IS NULL`,
		true, now, now, postID, true, false, now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidatePost(ctx, postID)
	return true, nil
}

// CountDue reports the current due-for-publication backlog. Used by the
// sweeper to drive the backlog gauge.
func (r *postRepository) CountDue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Where("is_scheduled = ? AND is_published = ? AND scheduled_for <= ?", true, false, now).
		Count(&count).Error
	return count, err
}
