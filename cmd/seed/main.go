package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/givecycle/givecycle/config"
	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/internal/infrastructure/postgres"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
)

// Seeds two demo users and one open announcement. Safe to run repeatedly; an
// existing demo donor short-circuits the run.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	announcements := postgres.NewAnnouncementRepository(pool)

	if _, err := users.GetByEmail(ctx, "demo.donor@givecycle.dev"); err == nil {
		log.Println("seed data already present")
		return
	} else if !apperr.IsNotFound(err) {
		log.Fatalf("checking seed data: %v", err)
	}

	hash, err := helpers.HashPassword("demo-password")
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	donor := &entity.User{
		Name:         "Demo Donor",
		DateOfBirth:  "1985-06-01",
		Contact:      entity.Contact{Email: "demo.donor@givecycle.dev", City: "Lisbon"},
		PasswordHash: hash,
	}
	if err := users.Create(ctx, donor); err != nil {
		log.Fatalf("creating donor: %v", err)
	}

	donee := &entity.User{
		Name:         "Demo Donee",
		DateOfBirth:  "1992-11-20",
		Contact:      entity.Contact{Email: "demo.donee@givecycle.dev", City: "Porto"},
		PasswordHash: hash,
	}
	if err := users.Create(ctx, donee); err != nil {
		log.Fatalf("creating donee: %v", err)
	}

	a := &entity.Announcement{
		Product: entity.Product{
			Name:        "Wooden bookshelf",
			Description: "Five shelves, solid pine, minor scratches",
			PhotoURL:    "https://storage.googleapis.com/givecycle-demo/bookshelf.jpg",
			Category:    "furniture",
		},
		DonorID:   donor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := announcements.Create(ctx, a); err != nil {
		log.Fatalf("creating announcement: %v", err)
	}

	log.Printf("seeded donor %s, donee %s, announcement %s", donor.ID, donee.ID, a.ID)
}
