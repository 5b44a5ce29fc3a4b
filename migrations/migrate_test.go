package migrations

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])
	assert.IsIncreasing(t, names)
}

func TestInitSchemaDeclaresSeatIndex(t *testing.T) {
	sql, err := migrationFiles.ReadFile("0001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sql), "bookings_active_seat_key")
	assert.Contains(t, string(sql), "WHERE status <> 'cancelled'")
	assert.Contains(t, string(sql), "reviews_user_event_key")
}

func TestApply_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("TEST_POSTGRES_USER", "postgres"),
		envOr("TEST_POSTGRES_PASSWORD", "postgres"),
		envOr("TEST_POSTGRES_HOST", "localhost"),
		envOr("TEST_POSTGRES_PORT", "5432"),
		envOr("TEST_POSTGRES_DB", "eventix_test"),
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = Apply(ctx, pool)
	require.NoError(t, err)

	// Second run is a no-op
	applied, err := Apply(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
