// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"parasocial/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets, so developers
// can log in as any of them.
const DefaultPassword = "Dev!Password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) (*Factory, error) {
	gofakeit.Seed(time.Now().UnixNano())

	// Hash once; bcrypt per user makes large seeds crawl.
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hashing seed password: %w", err)
	}

	return &Factory{
		db:   db,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		hash: string(hashed),
	}, nil
}

// CreateUser persists a user with a generated profile. Overrides run before
// the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := strings.ToLower(gofakeit.Username())
	if len(username) < 3 {
		username += gofakeit.LetterN(3)
	}
	if len(username) > 24 {
		username = username[:24]
	}
	// Usernames must be unique; a short random suffix avoids collisions on
	// large seeds.
	username = fmt.Sprintf("%s%d", username, f.rng.Intn(10000))

	user := &models.User{
		Username:    username,
		Email:       fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password:    f.hash,
		DisplayName: gofakeit.Name(),
		Bio:         gofakeit.Sentence(8),
		AvatarURL:   fmt.Sprintf("https://picsum.photos/seed/%s/256/256", gofakeit.UUID()),
	}
	for _, o := range overrides {
		o(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("creating seed user: %w", err)
	}
	return user, nil
}

// CreatePublishedPost persists a post that is already live, backdated up to
// maxDaysBack for a realistic feed spread.
func (f *Factory) CreatePublishedPost(author *models.User, maxDaysBack int) (*models.Post, error) {
	if maxDaysBack <= 0 {
		maxDaysBack = 90
	}
	publishedAt := time.Now().UTC().
		Add(-time.Duration(f.rng.Intn(maxDaysBack*24*60)) * time.Minute)

	post := &models.Post{
		Title:       gofakeit.Sentence(5),
		Content:     gofakeit.Paragraph(1, 4, 8, "\n"),
		UserID:      author.ID,
		IsPublished: true,
		PublishedAt: &publishedAt,
		CreatedAt:   publishedAt,
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("creating seed post: %w", err)
	}
	return post, nil
}

// CreateScheduledPost persists a pending scheduled post with the given
// publication time. Times in the past produce an immediately-due backlog for
// exercising the sweeper.
func (f *Factory) CreateScheduledPost(author *models.User, scheduledFor time.Time) (*models.Post, error) {
	at := scheduledFor.UTC()
	post := &models.Post{
		Title:        gofakeit.Sentence(5),
		Content:      gofakeit.Paragraph(1, 4, 8, "\n"),
		UserID:       author.ID,
		IsScheduled:  true,
		ScheduledFor: &at,
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("creating scheduled seed post: %w", err)
	}
	return post, nil
}

// CreateFollow inserts a follow edge, ignoring duplicates.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	if follower.ID == followee.ID {
		return nil
	}
	err := f.db.Exec(
		`INSERT INTO follows (follower_id, followee_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		follower.ID, followee.ID, time.Now().UTC(),
	).Error
	if err != nil {
		return fmt.Errorf("creating seed follow: %w", err)
	}
	return nil
}

// CreateLike inserts a like edge, ignoring duplicates.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	err := f.db.Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		user.ID, post.ID, time.Now().UTC(),
	).Error
	if err != nil {
		return fmt.Errorf("creating seed like: %w", err)
	}
	return nil
}

// CreateReport persists an open moderation report from reporter against
// reported.
func (f *Factory) CreateReport(reporter, reported *models.User) (*models.Report, error) {
	reasons := []string{
		models.ReportReasonSpam,
		models.ReportReasonHarassment,
		models.ReportReasonImpersonation,
		models.ReportReasonOther,
	}
	report := &models.Report{
		Reference:      fmt.Sprintf("rpt_%s", gofakeit.UUID()),
		ReporterID:     reporter.ID,
		ReportedUserID: reported.ID,
		Reason:         reasons[f.rng.Intn(len(reasons))],
		Description:    gofakeit.Sentence(10),
		Status:         models.ReportStatusOpen,
	}
	if err := f.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("creating seed report: %w", err)
	}
	return report, nil
}
