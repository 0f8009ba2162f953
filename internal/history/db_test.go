package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestDB opens a migrated database under a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	// Parent directories are created on demand
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestOpen_UnwritableLocation(t *testing.T) {
	if _, err := Open("/proc/nope/history.db"); err == nil {
		t.Error("expected error opening db under /proc")
	}
}

func TestClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := db.Migrate(); err == nil {
		t.Error("expected Migrate to fail on a closed db")
	}
}

func TestMigrate(t *testing.T) {
	db := setupTestDB(t)

	var count int
	row := db.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='runs'")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("schema lookup failed: %v", err)
	}
	if count != 1 {
		t.Error("runs table was not created")
	}

	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version lookup failed: %v", err)
	}
	if version != len(schema) {
		t.Errorf("user_version = %d, want %d", version, len(schema))
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.Migrate(); err != nil {
			t.Fatalf("Migrate run %d failed: %v", i, err)
		}
	}

	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version lookup failed: %v", err)
	}
	if version != len(schema) {
		t.Errorf("user_version = %d after repeat migrations, want %d", version, len(schema))
	}
}

func TestEncodeDecodeTime(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)

	decoded, err := decodeTime(encodeTime(now))
	if err != nil {
		t.Fatalf("decodeTime failed: %v", err)
	}
	if !decoded.Equal(now) {
		t.Errorf("round-trip = %v, want %v", decoded, now)
	}
}

func TestEncodeTime_OrdersLexicographically(t *testing.T) {
	earlier := encodeTime(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	later := encodeTime(time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC))

	if !(earlier < later) {
		t.Errorf("encoded times out of order: %q >= %q", earlier, later)
	}
}
