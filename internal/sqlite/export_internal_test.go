package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jkoskela/fitsight/internal/testhelpers"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

func seedUser(t *testing.T, ctx context.Context, db *Database, userID int64) {
	t.Helper()
	statements := []struct {
		query string
		args  []any
	}{
		{"INSERT INTO users (id) VALUES (?)", []any{userID}},
		{"INSERT INTO profiles (user_id, goal) VALUES (?, 'fat_loss')", []any{userID}},
		{"INSERT INTO workout_sessions (id, user_id, workout_date, duration_minutes) VALUES (?, ?, '2026-01-05', 60)",
			[]any{userID * 100, userID}},
		{"INSERT INTO exercise_records (session_id, exercise_name, weight_kg, reps, sets) VALUES (?, 'Bench Press', 80, 8, 3)",
			[]any{userID * 100}},
		{"INSERT INTO body_measurements (user_id, measured_on, weight_kg) VALUES (?, '2026-01-05', 80)", []any{userID}},
	}
	for _, stmt := range statements {
		if _, err := db.ReadWrite.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("Failed to seed user %d: %v", userID, err)
		}
	}
}

func TestDatabase_ExportUserData(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db := newTestDatabase(t)
	seedUser(t, ctx, db, 1)
	seedUser(t, ctx, db, 2)

	path, err := db.ExportUserData(ctx, 1, t.TempDir())
	if err != nil {
		t.Fatalf("ExportUserData: %v", err)
	}

	export, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open export database: %v", err)
	}
	defer func() {
		if err := export.Close(); err != nil {
			t.Errorf("Failed to close export database: %v", err)
		}
	}()

	// Only user 1's rows may appear in the export.
	counts := []struct {
		query string
		want  int
	}{
		{"SELECT COUNT(*) FROM users", 1},
		{"SELECT COUNT(*) FROM profiles", 1},
		{"SELECT COUNT(*) FROM workout_sessions", 1},
		{"SELECT COUNT(*) FROM exercise_records", 1},
		{"SELECT COUNT(*) FROM body_measurements", 1},
		{"SELECT COUNT(*) FROM users WHERE id = 1", 1},
	}
	for _, tt := range counts {
		var got int
		if err := export.QueryRowContext(ctx, tt.query).Scan(&got); err != nil {
			t.Fatalf("query %q: %v", tt.query, err)
		}
		if got != tt.want {
			t.Errorf("%s = %d, want %d", tt.query, got, tt.want)
		}
	}
}
