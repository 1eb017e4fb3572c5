package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	for _, table := range []string{"solve_runs", "run_assignments", "run_failures"} {
		var count int
		if err := db.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("Failed to query %s table: %v", table, err)
		}
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(nestedPath)
	if err != nil {
		t.Fatalf("Failed to open database with nested path: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestOpenTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db.Close()

	// Migrations are idempotent.
	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	db.Close()
}

func TestOpenWithConfig_UnknownDriver(t *testing.T) {
	_, err := OpenWithConfig(Config{Driver: "mysql"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("OpenWithConfig(mysql) error = %v, want ErrUnknownDriver", err)
	}
}

func TestOpenWithConfig_EmptyDriverIsSQLite(t *testing.T) {
	db, err := OpenWithConfig(Config{SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("OpenWithConfig: %v", err)
	}
	defer db.Close()

	if _, ok := db.Dialect().(*SQLiteDialect); !ok {
		t.Errorf("Dialect() = %T, want *SQLiteDialect", db.Dialect())
	}
}
