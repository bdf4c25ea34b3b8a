// Package publisher implements the scheduled publication engine: a periodic
// sweep that finds scheduled posts whose release time has arrived and
// transitions each one to published exactly once, even when several sweeps
// overlap.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parasocial/internal/models"
	"parasocial/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultBatchLimit caps how many candidates a single sweep processes when the
// caller does not supply a limit. Leftover candidates are picked up by the
// next sweep.
const DefaultBatchLimit = 50

// ErrStoreUnavailable wraps any store failure during a sweep. Callers retry
// the whole sweep; the conditional write makes retries safe.
var ErrStoreUnavailable = errors.New("post store unavailable")

// Store is the persistence surface the engine sweeps over.
//
// PublishDue must apply the publication transition conditionally: the write
// takes effect only if the post still satisfies the due predicate at write
// time, and reports whether it did. That single guarantee is what makes
// concurrent sweeps safe without any coordination between engines.
type Store interface {
	// SelectDue returns posts with is_scheduled set, not yet published, and
	// scheduled_for at or before now, ordered by scheduled_for ascending,
	// at most limit rows.
	SelectDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	// PublishDue publishes one due post if it is still unpublished. Returns
	// false with a nil error when a concurrent sweep got there first.
	PublishDue(ctx context.Context, postID uint, now time.Time) (bool, error)
}

// Transition records one post this sweep actually published. Posts claimed by
// a concurrent sweep do not appear here.
type Transition struct {
	PostID      uint      `json:"post_id"`
	AuthorID    uint      `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

// Engine runs publication sweeps against a Store. It is stateless between
// sweeps and safe for concurrent use; any number of engines may sweep the
// same store at once.
//
// The engine itself has no side effects beyond the store writes. Fan-out
// (notifications, cache invalidation) belongs to the trigger that called
// Sweep, keyed off the returned transitions.
type Engine struct {
	store   Store
	logger  *slog.Logger
	trigger string
}

// NewEngine creates a publication engine. The trigger label names the caller
// (for example "sweeper" or "admin") and is attached to logs and metrics.
func NewEngine(store Store, logger *slog.Logger, trigger string) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, trigger: trigger}
}

// Sweep publishes every post due at the provided instant, up to batchLimit
// candidates. The caller supplies now so that a sweep is deterministic with
// respect to its trigger time; the same instant is used for the candidate
// predicate and for PublishedAt.
//
// On a store failure mid-sweep, Sweep returns the transitions already applied
// together with an error wrapping ErrStoreUnavailable. Applied transitions
// are durable regardless; the next sweep simply finds fewer candidates.
func (e *Engine) Sweep(ctx context.Context, now time.Time, batchLimit int) ([]Transition, error) {
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}

	span, ctx := observability.NewSpan(ctx, "publisher.sweep")
	defer span.End()
	span.AddAttributes(
		attribute.String("sweep.trigger", e.trigger),
		attribute.Int("sweep.batch_limit", batchLimit),
	)

	start := time.Now()
	defer func() {
		observability.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	due, err := e.store.SelectDue(ctx, now, batchLimit)
	if err != nil {
		observability.SweepErrorsTotal.Inc()
		span.SetError(err)
		e.logger.ErrorContext(ctx, "sweep aborted: selecting due posts failed",
			slog.String("trigger", e.trigger),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: selecting due posts: %v", ErrStoreUnavailable, err)
	}
	if len(due) == 0 {
		return nil, nil
	}

	transitions := make([]Transition, 0, len(due))
	conflicts := 0
	for _, post := range due {
		published, err := e.store.PublishDue(ctx, post.ID, now)
		if err != nil {
			observability.SweepErrorsTotal.Inc()
			span.SetError(err)
			e.logger.ErrorContext(ctx, "sweep interrupted: publish write failed",
				slog.String("trigger", e.trigger),
				slog.Uint64("post_id", uint64(post.ID)),
				slog.Int("published_so_far", len(transitions)),
				slog.Any("error", err))
			return transitions, fmt.Errorf("%w: publishing post %d: %v", ErrStoreUnavailable, post.ID, err)
		}
		if !published {
			// Lost the race to a concurrent sweep. Expected under overlap.
			conflicts++
			observability.SweepConflictsTotal.Inc()
			continue
		}
		transitions = append(transitions, Transition{
			PostID:      post.ID,
			AuthorID:    post.UserID,
			PublishedAt: now,
		})
	}

	observability.PostsPublishedTotal.WithLabelValues(e.trigger).Add(float64(len(transitions)))
	span.AddAttributes(
		attribute.Int("sweep.candidates", len(due)),
		attribute.Int("sweep.published", len(transitions)),
		attribute.Int("sweep.conflicts", conflicts),
	)
	e.logger.InfoContext(ctx, "sweep complete",
		slog.String("trigger", e.trigger),
		slog.Int("candidates", len(due)),
		slog.Int("published", len(transitions)),
		slog.Int("conflicts", conflicts))

	return transitions, nil
}
