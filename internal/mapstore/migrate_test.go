package mapstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/gridmap/internal/gridmap"
)

// setupMigrationTestDB opens a database without applying the baseline
// schema, so the migrations under test own the schema from version zero.
func setupMigrationTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate_test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// setupTestMigrations creates a temporary directory with test migration
// files and returns its path.
func setupTestMigrations(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "migrations")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create temp migrations dir: %v", err)
	}

	migrations := map[string]string{
		"000001_create_probe_table.up.sql": `
			CREATE TABLE IF NOT EXISTS probe_table (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);
		`,
		"000001_create_probe_table.down.sql": `
			DROP TABLE IF EXISTS probe_table;
		`,
		"000002_add_probe_note.up.sql": `
			ALTER TABLE probe_table ADD COLUMN note TEXT;
		`,
		"000002_add_probe_note.down.sql": `
			-- SQLite has no DROP COLUMN, so recreate the table without it
			CREATE TABLE probe_table_new (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);
			INSERT INTO probe_table_new (id, name) SELECT id, name FROM probe_table;
			DROP TABLE probe_table;
			ALTER TABLE probe_table_new RENAME TO probe_table;
		`,
	}

	for filename, content := range migrations {
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write migration file %s: %v", filename, err)
		}
	}

	return dir
}

func tableExists(t *testing.T, db *DB, table string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name=?
	`, table).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check for table %s: %v", table, err)
	}
	return exists
}

func columnExists(t *testing.T, db *DB, table, column string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM pragma_table_info(?)
		WHERE name=?
	`, table, column).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check column %s.%s: %v", table, column, err)
	}
	return exists
}

func TestMigrateUp(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if dirty {
		t.Error("database should not be dirty after successful migration")
	}

	if !tableExists(t, db, "probe_table") {
		t.Error("probe_table should exist after migration")
	}
	if !columnExists(t, db, "probe_table", "note") {
		t.Error("note column should exist after second migration")
	}

	// Running up again with nothing pending is not an error.
	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Errorf("MigrateUp on up-to-date database failed: %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	if err := db.MigrateDown(migrationsDir); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1 after one step down, got %d", version)
	}
	if dirty {
		t.Error("database should not be dirty after rollback")
	}

	if !tableExists(t, db, "probe_table") {
		t.Error("probe_table should survive rolling back the second migration")
	}
	if columnExists(t, db, "probe_table", "note") {
		t.Error("note column should be gone after rollback")
	}
}

func TestMigrateVersion_FreshDatabase(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion on fresh database failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 on fresh database, got %d", version)
	}
	if dirty {
		t.Error("fresh database should not be dirty")
	}
}

func TestMigrateForce(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := setupTestMigrations(t)

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	if err := db.MigrateForce(migrationsDir, 1); err != nil {
		t.Fatalf("MigrateForce failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected forced version 1, got %d", version)
	}
	if dirty {
		t.Error("forced version should clear the dirty flag")
	}
}

// TestMigrateUp_ShippedMigrations runs the real migration files from the
// repository against an empty database and then uses the snapshot store
// through the migrated schema.
func TestMigrateUp_ShippedMigrations(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsDir := filepath.Join("..", "..", "migrations")

	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp with shipped migrations failed: %v", err)
	}

	if !tableExists(t, db, "map_snapshots") {
		t.Fatal("map_snapshots should exist after shipped migrations")
	}

	store := NewSnapshotStore(db.DB)
	m := gridmap.New(2, 2, 0.5, gridmap.WorldPoint{})
	saved, err := store.Save(m, "migrated", "schema-check")
	if err != nil {
		t.Fatalf("Save against migrated schema failed: %v", err)
	}
	if _, err := store.GetByID(saved.SnapshotID); err != nil {
		t.Fatalf("GetByID against migrated schema failed: %v", err)
	}

	if err := db.MigrateDown(migrationsDir); err != nil {
		t.Fatalf("MigrateDown with shipped migrations failed: %v", err)
	}
	if tableExists(t, db, "map_snapshots") {
		t.Error("map_snapshots should be dropped by the down migration")
	}
}
