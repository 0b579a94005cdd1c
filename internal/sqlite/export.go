package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
)

// exportTables lists the user-scoped tables in dependency order along with
// the predicate that selects one user's rows. Parent tables come first so the
// export satisfies foreign keys.
var exportTables = []struct {
	name  string
	where string
}{
	{name: "users", where: "id = ?"},
	{name: "profiles", where: "user_id = ?"},
	{name: "workout_sessions", where: "user_id = ?"},
	{name: "exercise_records", where: "session_id IN (SELECT id FROM main.workout_sessions WHERE user_id = ?)"},
	{name: "body_measurements", where: "user_id = ?"},
}

// ExportUserData copies one user's complete training history into a separate
// SQLite database file under basePath and returns the file path.
//
// This backs the data takeout endpoint so users can get all their data out.
func (db *Database) ExportUserData(ctx context.Context, userID int64, basePath string) (_ string, err error) {
	exportPath := filepath.Join(basePath, fmt.Sprintf("user-db-%d.sqlite3", userID))
	exportDsn := fmt.Sprintf("file:%s?mode=rwc", exportPath)

	conn, err := db.ReadOnly.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("get db connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close db connection: %w", closeErr)
		}
	}()

	// The read pool is query-only by default; the export attach needs writes
	// on this one connection.
	if _, err = conn.ExecContext(ctx, "PRAGMA query_only = FALSE"); err != nil {
		return "", fmt.Errorf("disable query-only mode: %w", err)
	}
	defer func() {
		if _, pragmaErr := conn.ExecContext(ctx, "PRAGMA query_only = TRUE"); pragmaErr != nil && err == nil {
			err = fmt.Errorf("restore query-only mode: %w", pragmaErr)
		}
	}()

	if err = db.copyUserData(ctx, conn, exportDsn, userID); err != nil {
		return "", fmt.Errorf("copy user data: %w", err)
	}

	return exportPath, nil
}

// copyUserData attaches the export database and copies schema and rows for
// each user-scoped table inside one transaction.
func (db *Database) copyUserData(ctx context.Context, conn *sql.Conn, exportDsn string, userID int64) error {
	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS export", exportDsn); err != nil {
		return fmt.Errorf("attach export database: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(ctx, "DETACH DATABASE export"); err != nil {
			db.logger.Error("failed to detach export database", "error", err)
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	for _, table := range exportTables {
		if err = db.copyTable(ctx, tx, table.name, table.where, userID); err != nil {
			return fmt.Errorf("copy table %s: %w", table.name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

// copyTable recreates one table in the export database and copies the rows
// selected by the where predicate.
func (db *Database) copyTable(ctx context.Context, tx *sql.Tx, name, where string, userID int64) error {
	var createSQL string
	err := tx.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_schema WHERE type = 'table' AND name = ?", name).Scan(&createSQL)
	if err != nil {
		return fmt.Errorf("read table schema: %w", err)
	}

	exportSQL := fmt.Sprintf("CREATE TABLE export.%s%s", name, createSQL[len("CREATE TABLE "+name):])
	if _, err = tx.ExecContext(ctx, exportSQL); err != nil {
		return fmt.Errorf("create export table: %w", err)
	}

	copySQL := fmt.Sprintf("INSERT INTO export.%s SELECT * FROM main.%s WHERE %s", //nolint:gosec // table names are static.
		name, name, where)
	if _, err = tx.ExecContext(ctx, copySQL, userID); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	return nil
}
