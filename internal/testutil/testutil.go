// Package testutil provides database helpers for integration tests.
// Tests that need a real Postgres call SetupTestDB or WithTestDB and
// are skipped when no test database is reachable, so the suite stays
// runnable without infrastructure. Set TEST_REQUIRE_DB=true in CI to
// turn those skips into failures.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/config"
	"github.com/nurpe/contractor-billing/internal/db"
)

// TestDSN returns the connection string for the integration test
// database. TEST_DB_DSN overrides everything, otherwise the string is
// assembled from TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER,
// TEST_DB_PASSWORD and TEST_DB_NAME.
func TestDSN() string {
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnvOrDefault("TEST_DB_USER", "postgres"),
		getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		getEnvOrDefault("TEST_DB_HOST", "localhost"),
		getEnvOrDefault("TEST_DB_PORT", "5432"),
		getEnvOrDefault("TEST_DB_NAME", "billing_test"),
	)
}

// SetupTestDB opens the test database, applies the production
// migrations and wipes all rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
		DB:          config.DBConfig{DSN: TestDSN()},
	}
	database, err := db.New(cfg, zerolog.Nop())
	if err != nil {
		if os.Getenv("TEST_REQUIRE_DB") == "true" {
			t.Fatalf("test database required but not available: %v", err)
		}
		t.Skipf("test database not available: %v", err)
	}
	CleanTables(t, database)
	return database
}

// CleanTables deletes every row, children before parents.
func CleanTables(t *testing.T, database *gorm.DB) {
	t.Helper()
	for _, table := range []string{"jobs", "contracts", "profiles"} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clean table %s: %v", table, err)
		}
	}
}

// WithTestDB runs fn against a clean test database and wipes it again
// afterwards.
func WithTestDB(t *testing.T, fn func(database *gorm.DB)) {
	t.Helper()
	database := SetupTestDB(t)
	defer func() {
		CleanTables(t, database)
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	fn(database)
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
