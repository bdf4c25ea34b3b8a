// Command migrate applies the database schema explicitly. Production deploys
// run this before rolling the API; non-production environments also migrate
// automatically on connect.
package main

import (
	"log"

	"parasocial/internal/config"
	"parasocial/internal/database"
	"parasocial/internal/middleware"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed")
}
