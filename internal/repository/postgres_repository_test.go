package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/eventix/migrations"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getPostgresPool creates a migrated PostgreSQL pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnvOrDefault("TEST_POSTGRES_USER", "postgres"),
		getEnvOrDefault("TEST_POSTGRES_PASSWORD", "postgres"),
		getEnvOrDefault("TEST_POSTGRES_HOST", "localhost"),
		getEnvOrDefault("TEST_POSTGRES_PORT", "5432"),
		getEnvOrDefault("TEST_POSTGRES_DB", "eventix_test"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}
	if _, err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanupTestData(t, pool)
	t.Cleanup(pool.Close)
	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	// Reverse order of dependencies
	for _, table := range []string{"reviews", "bookings", "events"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("Warning: failed to clean up %s: %v", table, err)
		}
	}
}

func newPostgresRepos(t *testing.T) repoSet {
	pool := getPostgresPool(t)
	return repoSet{
		events:   NewPostgresEventRepository(pool),
		bookings: NewPostgresBookingRepository(pool),
		reviews:  NewPostgresReviewRepository(pool),
	}
}

func TestPostgresEventRepository_Integration(t *testing.T) {
	runEventContract(t, newPostgresRepos(t))
}

func TestPostgresBookingRepository_Integration(t *testing.T) {
	runBookingContract(t, newPostgresRepos(t))
}

func TestPostgresReviewRepository_Integration(t *testing.T) {
	runReviewContract(t, newPostgresRepos(t))
}
