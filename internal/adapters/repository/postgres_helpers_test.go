package repository

import (
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects to the integration database and applies the schema.
// Tests are skipped when no database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	schema, err := os.ReadFile("../../../migrations/001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err, "Failed to apply schema")

	t.Cleanup(func() { db.Close() })
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE habit_completions, habits, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func insertUser(t *testing.T, db *sqlx.DB, id, email string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, 'hash', NOW(), NOW())`, id, email)
	require.NoError(t, err, "Failed to create user fixture")
}
