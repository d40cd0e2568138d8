//go:build integration

package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evansachie/lifeguard/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool, _ := testutil.NewPool(t)

	tables := []string{
		"users",
		"user_profiles",
		"memos",
		"user_settings",
		"user_measurements",
		"calorie_calculations",
		"emergency_contacts",
		"emergency_alerts",
		"emergency_contact_alerts",
		"emergency_preferences",
		"favorite_sounds",
		"user_workouts",
		"workout_streaks",
		"workout_goals",
		"weekly_progress",
		"health_metrics",
		"sensor_readings",
		"medications",
		"medication_reminders",
		"medication_tracking",
		"notification_preferences",
		"notification_deliveries",
	}

	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_DeliveryQueueSchema(t *testing.T) {
	ctx, pool, _ := testutil.NewPool(t)

	expectedColumns := []string{
		"id",
		"user_id",
		"medication_id",
		"recipient",
		"scheduled_for",
		"status",
		"attempt_count",
		"max_attempts",
		"next_attempt_at",
		"last_attempt_at",
		"last_error",
	}

	for _, col := range expectedColumns {
		exists, err := columnExists(ctx, pool, "notification_deliveries", col)
		if err != nil {
			t.Fatalf("columnExists failed: %v", err)
		}
		if !exists {
			t.Errorf("Column %q should exist in notification_deliveries table", col)
		}
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool, _ := testutil.NewPool(t)

	tests := []struct {
		name  string
		query string
		args  []any
	}{
		{
			name: "alert status",
			query: `INSERT INTO emergency_alerts (id, user_id, message, location, medical_info, status)
				VALUES ($1, 'u1', 'm', 'l', 'i', 'Pending')`,
			args: []any{NewID()},
		},
		{
			name: "delivery status",
			query: `INSERT INTO notification_deliveries
				(id, user_id, medication_id, recipient, medication_name, dosage, dose_time, scheduled_for, next_attempt_at, status)
				VALUES ($1, 'u1', 'm1', 'a@example.com', 'Aspirin', '100mg', '08:00', NOW(), NOW(), 'queued')`,
			args: []any{NewID()},
		},
		{
			name:  "reminder lead time",
			query: `INSERT INTO notification_preferences (user_id, reminder_lead_time) VALUES ($1, 5000)`,
			args:  []any{NewID()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pool.Exec(ctx, tt.query, tt.args...); err == nil {
				t.Errorf("insert should violate a check constraint")
			}
		})
	}
}

func TestIntegrationMigration_MedicationCascade(t *testing.T) {
	ctx, pool, _ := testutil.NewPool(t)

	medID := NewID()
	if _, err := pool.Exec(ctx,
		`INSERT INTO medications (id, user_id, name, dosage, times) VALUES ($1, 'u1', 'Aspirin', '100mg', '{08:00}')`,
		medID,
	); err != nil {
		t.Fatalf("insert medication: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO medication_tracking (id, user_id, medication_id, scheduled_time, taken) VALUES ($1, 'u1', $2, '08:00', TRUE)`,
		NewID(), medID,
	); err != nil {
		t.Fatalf("insert tracking: %v", err)
	}

	if _, err := pool.Exec(ctx, `DELETE FROM medications WHERE id = $1`, medID); err != nil {
		t.Fatalf("delete medication: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication_tracking WHERE medication_id = $1`, medID).Scan(&count); err != nil {
		t.Fatalf("count tracking: %v", err)
	}
	if count != 0 {
		t.Errorf("tracking rows = %d, want 0 after cascade", count)
	}
}

func TestIntegrationMigration_DownAndUp(t *testing.T) {
	ctx, pool, dsn := testutil.NewPool(t)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}
	dir := filepath.Join(root, "migrations")

	if err := MigrateDown(dsn, dir); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	exists, err := tableExists(ctx, pool, "medications")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("medications table should not exist after rollback")
	}

	if err := Migrate(dsn, dir); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	// A second run has nothing pending.
	if err := Migrate(dsn, dir); err != nil {
		t.Fatalf("second Migrate should be a no-op: %v", err)
	}
	exists, err = tableExists(ctx, pool, "medications")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if !exists {
		t.Error("medications table should exist after re-applying migrations")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}
