// Command seed populates the database with development data, including a
// backlog of due and future scheduled posts for exercising the sweeper.
package main

import (
	"flag"
	"log"

	"parasocial/internal/config"
	"parasocial/internal/database"
	"parasocial/internal/middleware"
	"parasocial/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "Number of published posts to create")
	flag.IntVar(&opts.ScheduledDue, "due", opts.ScheduledDue, "Number of already-due scheduled posts")
	flag.IntVar(&opts.ScheduledFuture, "future", opts.ScheduledFuture, "Number of future scheduled posts")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "Delete existing rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding completed")
}
