// Package testutil holds helpers shared by the integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/partygames/waitlist/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 424242

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table and re-applies the embedded migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	down, err := migrations.Down()
	if err != nil {
		return fmt.Errorf("load down migrations: %w", err)
	}
	for _, script := range down {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply down migration: %w", err)
		}
	}

	up, err := migrations.Up()
	if err != nil {
		return fmt.Errorf("load up migrations: %w", err)
	}
	for _, script := range up {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply up migration: %w", err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}
