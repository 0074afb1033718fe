package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yourusername/aegisquant/internal/config"
)

// SetupTestDB creates a test database connection and verifies it
func SetupTestDB(t *testing.T) *DB {
	cfg, err := config.Load("../../config/config.yaml.test")
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer verifyCancel()

	if err := db.Ping(verifyCtx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	db.Close()
}

// RunMigrations is a placeholder for programmatic migration in tests
// Uses golang-migrate CLI for test execution
func RunMigrations(ctx context.Context, db *DB) error {
	// In tests, run migrations with the migrate CLI:
	// migrate -path migrations -database "postgres://..." up
	return fmt.Errorf("use migrate CLI: migrate -path migrations -database \"your_dsn\" up")
}
