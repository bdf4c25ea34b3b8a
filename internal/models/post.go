package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the ParaSocial application.
//
// Publication state is a one-way machine: a post is created either published
// immediately (IsPublished=true, PublishedAt set) or scheduled
// (IsScheduled=true, IsPublished=false, ScheduledFor set). The publication
// engine is the only code path allowed to flip IsPublished on a scheduled
// post, so PublishedAt is set at most once.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`

	// IsPublished is true once the post is visible to readers.
	IsPublished bool `gorm:"not null;default:false;index:idx_posts_due,priority:2" json:"is_published"`
	// IsScheduled records future-publication intent. It stays true after the
	// post is released; the actionable pending state is the conjunction
	// is_scheduled AND NOT is_published.
	IsScheduled bool `gorm:"not null;default:false;index:idx_posts_due,priority:1" json:"is_scheduled"`
	// ScheduledFor is set exactly once at creation for scheduled posts and is
	// immutable afterwards. Rescheduling is not an update of this field.
	ScheduledFor *time.Time `gorm:"index:idx_posts_due,priority:3" json:"scheduled_for,omitempty"`
	// PublishedAt is set exactly once, when IsPublished transitions to true.
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
