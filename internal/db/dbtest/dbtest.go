// Package dbtest gives repository tests a migrated Postgres pool. Tests that
// use it are skipped unless DB_HOST is set.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/config"
	"github.com/MikeMC777/cafe-pos/internal/db"
	"github.com/MikeMC777/cafe-pos/internal/migrations"
)

// Pool connects with the DB_* settings and brings the schema up to date.
func Pool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set, skipping postgres test")
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.PostgresDSN())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log, _ := test.NewNullLogger()
	_, err = migrations.Up(ctx, pool, log)
	require.NoError(t, err)
	return pool
}

// Shop inserts a shop with a unique name and returns its id.
func Shop(t testing.TB, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO shops (name, vat_rate, service_fee_rate) VALUES ($1, 10, 5) RETURNING id
	`, "test shop "+uuid.NewString()).Scan(&id)
	require.NoError(t, err)
	return id
}

// Count runs a COUNT(*) query.
func Count(t testing.TB, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
