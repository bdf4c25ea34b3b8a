// Command sweeper runs the scheduled publication sweep loop. It periodically
// finds due scheduled posts, transitions them to published, and fans out
// notifications for each released post. Multiple sweeper instances may run
// concurrently; the conditional publish write keeps each transition
// at-most-once.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parasocial/internal/cache"
	"parasocial/internal/config"
	"parasocial/internal/database"
	"parasocial/internal/middleware"
	"parasocial/internal/notifications"
	"parasocial/internal/observability"
	"parasocial/internal/publisher"
	"parasocial/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)
	notifier := notifications.NewNotifier(cache.GetClient())

	postRepo := repository.NewPostRepository(db)
	engine := publisher.NewEngine(postRepo, middleware.Logger, "sweeper")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.SweepIntervalSeconds) * time.Second
	middleware.Logger.Info("sweeper starting",
		slog.Duration("interval", interval),
		slog.Int("batch_limit", cfg.SweepBatchLimit))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Sweep once at startup so a restart does not delay an overdue backlog by
	// a full interval.
	runSweep(ctx, engine, postRepo, notifier, cfg.SweepBatchLimit)

	for {
		select {
		case <-ctx.Done():
			middleware.Logger.Info("sweeper shutting down")
			return
		case <-ticker.C:
			runSweep(ctx, engine, postRepo, notifier, cfg.SweepBatchLimit)
		}
	}
}

// runSweep performs sweeps until the backlog is drained: a full batch means
// more due posts may remain, so it sweeps again immediately rather than
// waiting for the next tick.
func runSweep(
	ctx context.Context,
	engine *publisher.Engine,
	postRepo repository.PostRepository,
	notifier *notifications.Notifier,
	batchLimit int,
) {
	for {
		if ctx.Err() != nil {
			return
		}

		now := time.Now().UTC()
		transitions, err := engine.Sweep(ctx, now, batchLimit)

		fanOut(ctx, notifier, transitions)

		if err != nil {
			if errors.Is(err, publisher.ErrStoreUnavailable) {
				middleware.Logger.Error("sweep aborted, store unavailable",
					slog.String("error", err.Error()))
			} else {
				middleware.Logger.Error("sweep failed", slog.String("error", err.Error()))
			}
			break
		}

		if len(transitions) < batchLimit {
			break
		}
		middleware.Logger.Info("full batch released, draining backlog",
			slog.Int("published", len(transitions)))
	}

	// Report the remaining backlog after each cycle.
	if remaining, err := postRepo.CountDue(ctx, time.Now().UTC()); err == nil {
		observability.ScheduledBacklog.Set(float64(remaining))
	}
}

func fanOut(ctx context.Context, notifier *notifications.Notifier, transitions []publisher.Transition) {
	if len(transitions) == 0 {
		return
	}
	cache.InvalidateFeed(ctx)
	for _, tr := range transitions {
		if err := notifier.PublishPostPublished(ctx, tr.PostID, tr.AuthorID, tr.PublishedAt); err != nil {
			middleware.Logger.Warn("failed to publish release event",
				slog.Uint64("post_id", uint64(tr.PostID)),
				slog.String("error", err.Error()))
		}
	}
}
