package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/lukinkratas/zapis-stavy/internal/config"
	"github.com/lukinkratas/zapis-stavy/internal/db"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenTestDB connects to the PostgreSQL named by TEST_DB_HOST, applies migrations and
// empties the tables. Without TEST_DB_HOST the calling test is skipped.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:         host,
		Port:         5432,
		User:         envOr("TEST_DB_USER", "zapis"),
		Password:     envOr("TEST_DB_PASSWORD", "zapis_pass"),
		DBName:       envOr("TEST_DB_NAME", "zapis_test"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ctx := context.Background()
	if err := db.ApplyMigrations(ctx, conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "TRUNCATE readings, meters, users CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}
