package database

import (
	"path/filepath"
	"testing"
)

func TestMigrate(t *testing.T) {
	t.Run("creates the ledger schema", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}

		for _, table := range []string{"transaction", "import_batch", "ticker_reference", "price_historical", "price_latest", "account_value_snapshot"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
			if err != nil {
				t.Errorf("Expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("is idempotent and reports the latest version", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if err := Migrate(db); err != nil {
			t.Fatalf("first Migrate() error = %v", err)
		}
		if err := Migrate(db); err != nil {
			t.Fatalf("second Migrate() error = %v", err)
		}

		current, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("SchemaVersion() error = %v", err)
		}
		latest, err := LatestVersion()
		if err != nil {
			t.Fatalf("LatestVersion() error = %v", err)
		}
		if current != latest || latest != 3 {
			t.Errorf("Expected schema version 3, got current=%d latest=%d", current, latest)
		}
	})
}
