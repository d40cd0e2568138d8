// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	// Registers the "postgres" driver used by goose.
	_ "github.com/lib/pq"
	"github.com/pressly/goose"
	"github.com/redis/go-redis/v9"

	"github.com/evansachie/lifeguard/internal/model"
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

const advisoryLockID int64 = 5001

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

// ResetSchema rolls every goose migration back and applies them again,
// leaving empty tables.
func ResetSchema(databaseURL string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}
	dir := filepath.Join(root, "migrations")

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Reset(db, dir); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// NewPool connects to TEST_DATABASE_URL, takes the advisory lock and
// resets the schema. The lock and pool are released on cleanup.
func NewPool(t testing.TB) (context.Context, *pgxpool.Pool, string) {
	t.Helper()
	ctx := context.Background()
	dsn := RequireEnv(t, "TEST_DATABASE_URL")

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	unlock, err := AcquireDBLock(ctx, pool)
	if err != nil {
		pool.Close()
		t.Fatalf("lock database: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
		pool.Close()
	})

	if err := ResetSchema(dsn); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	return ctx, pool, dsn
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with sensible defaults.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:          UniqueID("user"),
		Email:       UniqueID("ama") + "@example.com",
		FirstName:   "Ama",
		LastName:    "Mensah",
		Phone:       "+233200000000",
		MedicalInfo: "Asthma",
	}
}

// NewTestContact creates an unverified contact owned by userID.
func NewTestContact(t testing.TB, userID string, priority int) *model.EmergencyContact {
	t.Helper()
	return &model.EmergencyContact{
		ID:           UniqueID("contact"),
		UserID:       userID,
		Name:         "Kofi Mensah",
		Phone:        "+233244000000",
		Email:        UniqueID("kofi") + "@example.com",
		Relationship: "Brother",
		Priority:     priority,
		Role:         model.DefaultContactRole,
	}
}

// NewTestMedication creates an active twice-daily medication.
func NewTestMedication(t testing.TB, userID string) *model.Medication {
	t.Helper()
	now := time.Now().UTC()
	return &model.Medication{
		ID:        UniqueID("med"),
		UserID:    userID,
		Name:      "Metformin",
		Dosage:    "500mg",
		Frequency: "Twice daily",
		Times:     []string{"08:00", "20:00"},
		StartDate: now.AddDate(0, 0, -1),
		Active:    true,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
