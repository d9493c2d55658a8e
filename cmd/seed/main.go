// Command seed fills a development database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"newsletter/internal/config"
	"newsletter/internal/database"
	"newsletter/internal/middleware"
	"newsletter/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numPosts := flag.Int("posts", 120, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Delete existing data before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for a reproducible run (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if _, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		RandSeed:    *randSeed,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	middleware.Logger.Info("all seeded accounts share one password", "password", seed.DefaultPassword)
}
