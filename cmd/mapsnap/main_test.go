package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/gridmap/internal/gridmap"
	"github.com/banshee-data/gridmap/internal/mapstore"
	"github.com/banshee-data/gridmap/internal/testutil"
	"github.com/banshee-data/gridmap/internal/timeutil"
)

func newTestStore(t *testing.T) *mapstore.SnapshotStore {
	t.Helper()
	db, err := mapstore.NewDB(filepath.Join(t.TempDir(), "maps.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mapstore.NewSnapshotStore(db.DB)
}

func snapTestMap(t *testing.T) *gridmap.GridMap {
	t.Helper()
	m := gridmap.New(4, 5, 0.1, gridmap.WorldPoint{X: -1, Y: 2})
	testutil.AssertNoError(t, m.Update(1, 2, 0.9))
	testutil.AssertNoError(t, m.Update(3, 0, 0.2))
	return m
}

func TestFormatSnapshot(t *testing.T) {
	snap := &mapstore.MapSnapshot{
		SnapshotID: "abc-123",
		Name:       "lab",
		Rows:       3,
		Cols:       4,
		CellSize:   0.05,
		OriginX:    -2.5,
		OriginY:    1,
		Reason:     "manual",
		CreatedAt:  time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC).UnixNano(),
	}

	want := "abc-123  lab  3x4  cell=0.05  origin=(-2.5,1)  reason=manual  2026-01-15T10:30:00Z"
	if got := formatSnapshot(snap); got != want {
		t.Errorf("formatSnapshot() = %q, want %q", got, want)
	}
}

func TestFindSnapshot(t *testing.T) {
	store := newTestStore(t)
	clock := timeutil.NewMockClock(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	store.Clock = clock
	m := snapTestMap(t)

	first, err := store.Save(m, "lab", "test")
	testutil.AssertNoError(t, err)
	clock.Advance(time.Second)
	second, err := store.Save(m, "lab", "test")
	testutil.AssertNoError(t, err)

	t.Run("by id", func(t *testing.T) {
		got, err := findSnapshot(store, first.SnapshotID, "")
		testutil.AssertNoError(t, err)
		if got.SnapshotID != first.SnapshotID {
			t.Errorf("SnapshotID = %s, want %s", got.SnapshotID, first.SnapshotID)
		}
	})

	t.Run("latest by name", func(t *testing.T) {
		got, err := findSnapshot(store, "", "lab")
		testutil.AssertNoError(t, err)
		if got.SnapshotID != second.SnapshotID {
			t.Errorf("SnapshotID = %s, want %s", got.SnapshotID, second.SnapshotID)
		}
	})

	t.Run("id wins over name", func(t *testing.T) {
		got, err := findSnapshot(store, first.SnapshotID, "lab")
		testutil.AssertNoError(t, err)
		if got.SnapshotID != first.SnapshotID {
			t.Errorf("SnapshotID = %s, want %s", got.SnapshotID, first.SnapshotID)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := findSnapshot(store, "no-such-id", "")
		testutil.AssertError(t, err)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := findSnapshot(store, "", "warehouse")
		testutil.AssertError(t, err)
	})
}

// TestSaveRestorePipeline drives the same calls the save and restore commands
// make: PGM+YAML pair in, database snapshot, PGM+YAML pair back out. The
// snapshot keeps exact log-odds and the PGM encoder is stable on already
// quantized values, so the reloaded map must match the first load exactly.
func TestSaveRestorePipeline(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)

	src := filepath.Join(dir, "src")
	testutil.AssertNoError(t, snapTestMap(t).WriteOccupancyGrid(src))

	loaded, err := gridmap.ReadOccupancyGrid(src)
	testutil.AssertNoError(t, err)

	snap, err := store.Save(loaded, "pipeline", "mapsnap")
	testutil.AssertNoError(t, err)

	found, err := findSnapshot(store, "", "pipeline")
	testutil.AssertNoError(t, err)
	if found.SnapshotID != snap.SnapshotID {
		t.Fatalf("SnapshotID = %s, want %s", found.SnapshotID, snap.SnapshotID)
	}

	restored, err := store.Restore(found)
	testutil.AssertNoError(t, err)

	out := filepath.Join(dir, "restored", "map")
	testutil.AssertNoError(t, os.MkdirAll(filepath.Dir(out), 0755))
	testutil.AssertNoError(t, restored.WriteOccupancyGrid(out))
	testutil.AssertFileExists(t, out+".pgm")
	testutil.AssertFileExists(t, out+".yaml")

	final, err := gridmap.ReadOccupancyGrid(out)
	testutil.AssertNoError(t, err)
	if !loaded.Equals(final, 0) {
		t.Error("map changed across the snapshot round trip")
	}
}
