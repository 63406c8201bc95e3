package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// Test 1: database initializes and creates the presets table
func TestInitializeSQLite(t *testing.T) {
	// Arrange
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	// Act
	db, err := InitializeSQLite(context.Background(), dbPath)

	// Assert
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	if db == nil {
		t.Fatal("Expected non-nil database")
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", "presets").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check table presets: %v", err)
	}
	if count != 1 {
		t.Error("Table presets not found")
	}
}

// Test 2: WAL mode is enabled
func TestInitializeSQLite_WALMode(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode='wal', got '%s'", journalMode)
	}
}

// Test 3: opening twice is idempotent
func TestInitializeSQLite_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 2; i++ {
		db, err := InitializeSQLite(context.Background(), dbPath)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		db.Close()
	}
}

// Test 4: schema version is recorded and newer stores are refused
func TestInitializeSQLite_SchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("Failed to query user_version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("Expected user_version=%d, got %d", SchemaVersion, version)
	}

	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("Failed to bump user_version: %v", err)
	}
	db.Close()

	_, err = InitializeSQLite(context.Background(), dbPath)
	if !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("Expected ErrSchemaTooNew, got %v", err)
	}
}

// Test 5: the schema rejects intervals outside the stored range
func TestInitializeSQLite_IntervalCheck(t *testing.T) {
	db, err := InitializeSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	insert := `INSERT INTO presets (id, name, racer_count, race_length, tick_interval_ms,
		factor_policy, created_at, updated_at) VALUES (?, ?, 1, 10, ?, 'fixed', '', '')`
	if _, err := db.Exec(insert, "a", "ok", 10); err != nil {
		t.Errorf("10ms insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "b", "too-fast", 1); err == nil {
		t.Error("Expected CHECK failure for 1ms")
	}
}
