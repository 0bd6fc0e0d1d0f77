// Package main manages occupancy map snapshots in SQLite: save a PGM+YAML
// pair as a snapshot, list stored snapshots, restore one back to disk, and
// run schema migrations on the snapshot database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/banshee-data/gridmap/internal/gridmap"
	"github.com/banshee-data/gridmap/internal/mapstore"
	"github.com/banshee-data/gridmap/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "save":
		handleSave(args)
	case "list":
		handleList(args)
	case "restore":
		handleRestore(args)
	case "migrate":
		handleMigrate(args)
	case "version":
		fmt.Printf("mapsnap version %s\n", version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mapsnap - snapshot manager for occupancy grid maps

Usage: mapsnap <command> [options]

Commands:
  save      Save a PGM+YAML map pair as a database snapshot
  list      List stored snapshots
  restore   Write a snapshot back to a PGM+YAML pair
  migrate   Run schema migrations (up|down|version|force)
  version   Show build version
  help      Show this help message

Snapshots keep the full float64 log-odds field, so restore is exact where
the 8-bit PGM pair is not.

Examples:
  mapsnap save -db maps.db -map demo-out/demo -name lab-floor
  mapsnap list -db maps.db -name lab-floor
  mapsnap restore -db maps.db -name lab-floor -out restored/lab
  mapsnap migrate -db maps.db -dir migrations up`)
}

func handleSave(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	dbPath := fs.String("db", "maps.db", "Snapshot database path")
	mapBase := fs.String("map", "", "Base path of the PGM+YAML pair (required)")
	name := fs.String("name", "", "Snapshot name (required)")
	reason := fs.String("reason", "manual", "Why the snapshot is being taken")
	fs.Parse(args)

	if *mapBase == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "Error: -map and -name are required")
		fs.Usage()
		os.Exit(1)
	}

	m, err := gridmap.ReadOccupancyGrid(*mapBase)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}

	db, err := mapstore.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	snap, err := mapstore.NewSnapshotStore(db.DB).Save(m, *name, *reason)
	if err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}
	fmt.Printf("saved snapshot %s (%dx%d) under name %q\n", snap.SnapshotID, snap.Rows, snap.Cols, snap.Name)
}

func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", "maps.db", "Snapshot database path")
	name := fs.String("name", "", "Only list snapshots with this name (empty = all)")
	fs.Parse(args)

	db, err := mapstore.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	snaps, err := mapstore.NewSnapshotStore(db.DB).List(*name)
	if err != nil {
		log.Fatalf("Failed to list snapshots: %v", err)
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots")
		return
	}

	for _, snap := range snaps {
		fmt.Println(formatSnapshot(snap))
	}
}

func formatSnapshot(snap *mapstore.MapSnapshot) string {
	return fmt.Sprintf("%s  %s  %dx%d  cell=%g  origin=(%g,%g)  reason=%s  %s",
		snap.SnapshotID, snap.Name, snap.Rows, snap.Cols, snap.CellSize,
		snap.OriginX, snap.OriginY, snap.Reason,
		time.Unix(0, snap.CreatedAt).UTC().Format(time.RFC3339))
}

func handleRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	dbPath := fs.String("db", "maps.db", "Snapshot database path")
	id := fs.String("id", "", "Snapshot ID (overrides -name)")
	name := fs.String("name", "", "Restore the latest snapshot with this name")
	out := fs.String("out", "", "Output base path for the PGM+YAML pair (required)")
	fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required")
		fs.Usage()
		os.Exit(1)
	}
	if *id == "" && *name == "" {
		fmt.Fprintln(os.Stderr, "Error: either -id or -name is required")
		fs.Usage()
		os.Exit(1)
	}

	db, err := mapstore.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := mapstore.NewSnapshotStore(db.DB)

	snap, err := findSnapshot(store, *id, *name)
	if err != nil {
		log.Fatalf("Failed to find snapshot: %v", err)
	}

	m, err := store.Restore(snap)
	if err != nil {
		log.Fatalf("Failed to restore snapshot: %v", err)
	}
	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output dir: %v", err)
		}
	}
	if err := m.WriteOccupancyGrid(*out); err != nil {
		log.Fatalf("Failed to write map: %v", err)
	}
	fmt.Printf("restored snapshot %s to %s.pgm\n", snap.SnapshotID, *out)
}

// findSnapshot resolves the restore target: an explicit ID wins over a name.
func findSnapshot(store *mapstore.SnapshotStore, id, name string) (*mapstore.MapSnapshot, error) {
	if id != "" {
		return store.GetByID(id)
	}
	return store.Latest(name)
}

func handleMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", "maps.db", "Snapshot database path")
	dir := fs.String("dir", "migrations", "Migrations directory")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mapsnap migrate [-db path] [-dir path] <up|down|version|force N>")
		os.Exit(1)
	}

	// Open without the baseline schema: migrations own the schema here.
	db, err := mapstore.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	action := fs.Arg(0)
	switch action {
	case "up":
		if err := db.MigrateUp(*dir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		version, dirty, err := db.MigrateVersion(*dir)
		if err != nil {
			log.Fatalf("Failed to read migration version: %v", err)
		}
		fmt.Printf("migrated up to version %d (dirty=%v)\n", version, dirty)

	case "down":
		if err := db.MigrateDown(*dir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Println("rolled back one migration")

	case "version":
		version, dirty, err := db.MigrateVersion(*dir)
		if err != nil {
			log.Fatalf("Failed to read migration version: %v", err)
		}
		fmt.Printf("version %d (dirty=%v)\n", version, dirty)

	case "force":
		if fs.NArg() < 2 {
			log.Fatal("Usage: mapsnap migrate force <version>")
		}
		v, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			log.Fatalf("Invalid version %q: %v", fs.Arg(1), err)
		}
		if err := db.MigrateForce(*dir, v); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		fmt.Printf("forced version to %d\n", v)

	default:
		fmt.Fprintf(os.Stderr, "Unknown migrate action: %s\n\n", action)
		os.Exit(1)
	}
}
