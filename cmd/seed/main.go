package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"time"

	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/logger"
	"kassa/internal/models"
	"kassa/internal/repository"
)

var (
	userCount   = flag.Int("users", 10, "Number of customer accounts to create")
	credit      = flag.Int64("credit", 10000, "Starting credit per customer")
	rows        = flag.Int("rows", 10, "Seat rows per event")
	seatsPerRow = flag.Int("seats-per-row", 20, "Seats per row")
	dryRun      = flag.Bool("dry-run", false, "Show what would be created without making changes")
)

// Development seed tool. Provisions an admin, customer accounts with credit,
// one event with two sessions and ticket types, and a seat grid.
func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	if *dryRun {
		logger.Get().Info("Dry run",
			"users", *userCount, "credit", *credit,
			"seats", (*rows)*(*seatsPerRow))
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Get().Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Get().Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := seed(db); err != nil {
		logger.Get().Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Get().Info("Seeding completed")
}

func seed(db *database.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repos := repository.NewRepositories(db)

	admin := &models.User{
		Username:     "admin",
		Email:        "admin@kassa.local",
		PasswordHash: hashPassword("admin123"),
		Role:         models.RoleAdmin,
		Credit:       0,
		IsActive:     true,
	}
	if err := repos.Users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	for i := 1; i <= *userCount; i++ {
		user := &models.User{
			Username:     fmt.Sprintf("customer%d", i),
			Email:        fmt.Sprintf("customer%d@kassa.local", i),
			PasswordHash: hashPassword(fmt.Sprintf("customer%d", i)),
			Role:         models.RoleCustomer,
			Credit:       *credit,
			IsActive:     true,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create customer %d: %w", i, err)
		}
	}
	logger.Get().Info("Created accounts", "customers", *userCount)

	description := "Seeded for development"
	event := &models.Event{Title: "Kassa Demo Concert", Description: &description, Status: "published"}
	if err := repos.Catalog.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	for _, startOffset := range []time.Duration{24 * time.Hour, 48 * time.Hour} {
		session := &models.EventSession{
			EventID:  event.ID,
			StartsAt: time.Now().Add(startOffset),
			Capacity: (*rows) * (*seatsPerRow),
		}
		if err := repos.Catalog.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}

	for _, tt := range []models.TicketType{
		{EventID: event.ID, Name: "standard", Price: 5000, TotalStock: (*rows) * (*seatsPerRow)},
		{EventID: event.ID, Name: "vip", Price: 15000, TotalStock: 2 * (*seatsPerRow)},
	} {
		tt := tt
		if err := repos.Catalog.CreateTicketType(ctx, &tt); err != nil {
			return fmt.Errorf("create ticket type %s: %w", tt.Name, err)
		}
	}

	created, err := repos.Seats.CreateGrid(ctx, event.ID, "main", *rows, *seatsPerRow)
	if err != nil {
		return fmt.Errorf("create seat grid: %w", err)
	}
	logger.Get().Info("Created event", "event_id", event.ID, "seats", created)

	return nil
}

func hashPassword(password string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(password)))
}
