package seed

import (
	"fmt"
	"log"
	"time"

	"parasocial/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers int
	// NumPosts is the number of already-published posts spread across users.
	NumPosts int
	// ScheduledDue is the number of pending posts whose scheduled_for is
	// already in the past, so the next sweep releases them.
	ScheduledDue int
	// ScheduledFuture is the number of pending posts scheduled over the next
	// seven days.
	ScheduledFuture int
	// ShouldClean truncates existing rows before seeding.
	ShouldClean bool
}

// DefaultOptions returns a small but representative data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:        25,
		NumPosts:        120,
		ScheduledDue:    10,
		ScheduledFuture: 15,
		ShouldClean:     false,
	}
}

// Run seeds the database with users, posts, a follow mesh, likes, and a
// scheduled-post backlog. It also creates an admin account
// (admin-seed / DefaultPassword) for exercising the moderation endpoints.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	factory, err := NewFactory(db)
	if err != nil {
		return err
	}

	admin, err := factory.CreateUser(func(u *models.User) {
		u.Username = "admin-seed"
		u.Email = "admin@parasocial.local"
		u.DisplayName = "Seed Admin"
		u.IsAdmin = true
	})
	if err != nil {
		return err
	}
	log.Printf("seeded admin account %q (id=%d)", admin.Username, admin.ID)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return fmt.Errorf("seeding requires at least one user")
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rng.Intn(len(users))]
		post, err := factory.CreatePublishedPost(author, 90)
		if err != nil {
			return err
		}
		posts = append(posts, post)
	}

	now := time.Now().UTC()
	for i := 0; i < opts.ScheduledDue; i++ {
		author := users[factory.rng.Intn(len(users))]
		due := now.Add(-time.Duration(1+factory.rng.Intn(120)) * time.Minute)
		if _, err := factory.CreateScheduledPost(author, due); err != nil {
			return err
		}
	}
	for i := 0; i < opts.ScheduledFuture; i++ {
		author := users[factory.rng.Intn(len(users))]
		at := now.Add(time.Duration(1+factory.rng.Intn(7*24*60)) * time.Minute)
		if _, err := factory.CreateScheduledPost(author, at); err != nil {
			return err
		}
	}

	// Follow mesh: each user follows a handful of others.
	for _, follower := range users {
		follows := 3 + factory.rng.Intn(5)
		for j := 0; j < follows; j++ {
			followee := users[factory.rng.Intn(len(users))]
			if err := factory.CreateFollow(follower, followee); err != nil {
				return err
			}
		}
	}

	// Likes on published posts.
	for _, post := range posts {
		likes := factory.rng.Intn(6)
		for j := 0; j < likes; j++ {
			liker := users[factory.rng.Intn(len(users))]
			if err := factory.CreateLike(liker, post); err != nil {
				return err
			}
		}
	}

	// A few open reports so the moderation queue is not empty.
	for i := 0; i < 3 && len(users) > 1; i++ {
		reporter := users[factory.rng.Intn(len(users))]
		reported := users[factory.rng.Intn(len(users))]
		if reporter.ID == reported.ID {
			continue
		}
		if _, err := factory.CreateReport(reporter, reported); err != nil {
			return err
		}
	}

	log.Printf("seeded %d users, %d published posts, %d due + %d future scheduled posts",
		len(users), len(posts), opts.ScheduledDue, opts.ScheduledFuture)
	return nil
}

func clean(db *gorm.DB) error {
	// Children before parents to satisfy FK constraints.
	tables := []string{"reports", "likes", "blocks", "follows", "posts", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("cleaning table %s: %w", table, err)
		}
	}
	log.Println("cleaned existing seed data")
	return nil
}
