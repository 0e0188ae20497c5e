package testutil

// Package testutil provides shared helpers for integration tests that need
// live Redis or PostgreSQL. Tests skip when the backing service is not
// reachable unless TEST_REQUIRE_INFRA is set.

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	// pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// TestingTB covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

func requireInfra() bool {
	v, err := strconv.ParseBool(os.Getenv("TEST_REQUIRE_INFRA"))
	return err == nil && v
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// SetupTestRedis creates a Redis client for testing, flushing the selected DB.
// Tests are skipped if Redis is not available.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := net.JoinHostPort(
		getEnvOrDefault("TEST_REDIS_HOST", "localhost"),
		getEnvOrDefault("TEST_REDIS_PORT", "6379"),
	)
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   15, // dedicated test DB index
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close redis client after ping error: %v", cerr)
		}
		if requireInfra() {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	return client
}

// SetupTestDB opens the test PostgreSQL database and ensures the
// operator_logins table exists. Tests are skipped if the DB is unavailable.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		getEnvOrDefault("TEST_DB_USER", "fleetui"),
		getEnvOrDefault("TEST_DB_PASSWORD", "fleetui"),
		net.JoinHostPort(getEnvOrDefault("TEST_DB_HOST", "localhost"), getEnvOrDefault("TEST_DB_PORT", "55432")),
		getEnvOrDefault("TEST_DB_NAME", "fleetui"),
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		if requireInfra() {
			t.Fatal("test database not available:", err)
		}
		t.Skip("test database not available:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if cerr := db.Close(); cerr != nil {
			t.Logf("test db close failed: %v", cerr)
		}
		if requireInfra() {
			t.Fatal("test database not reachable:", pingErr)
		}
		t.Skip("test database not reachable:", pingErr)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS operator_logins (
			user_id        TEXT PRIMARY KEY,
			email          TEXT NOT NULL,
			first_login_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, execErr := db.ExecContext(ctx, schema); execErr != nil {
		t.Fatal("create operator_logins table:", execErr)
	}
	if _, execErr := db.ExecContext(ctx, "DELETE FROM operator_logins"); execErr != nil {
		t.Fatal("clean operator_logins table:", execErr)
	}

	return db
}
