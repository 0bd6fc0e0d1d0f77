package mapstore

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/gridmap/internal/gridmap"
	"github.com/banshee-data/gridmap/internal/timeutil"
)

// MapSnapshot is a persisted point-in-time copy of an occupancy grid:
// geometry columns plus the full log-odds field as a gob+gzip blob.
type MapSnapshot struct {
	SnapshotID string  `json:"snapshot_id"`
	Name       string  `json:"name"`
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	CellSize   float64 `json:"cell_size"`
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	Reason     string  `json:"snapshot_reason"`
	CellsBlob  []byte  `json:"-"`
	CreatedAt  int64   `json:"created_at"`
}

// SnapshotStore provides persistence for map snapshots.
type SnapshotStore struct {
	db *sql.DB

	// Clock stamps CreatedAt on Save. Tests replace it with a
	// timeutil.MockClock to pin timestamps.
	Clock timeutil.Clock
}

// NewSnapshotStore creates a new SnapshotStore stamping snapshots with the
// wall clock.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, Clock: timeutil.RealClock{}}
}

// Save persists the map's current state under name and returns the stored
// snapshot. reason records why the snapshot was taken ("manual",
// "pre-smooth", ...).
func (s *SnapshotStore) Save(m *gridmap.GridMap, name, reason string) (*MapSnapshot, error) {
	blob, err := serializeCells(m.LogOdds())
	if err != nil {
		return nil, fmt.Errorf("serialize cells: %w", err)
	}

	snap := &MapSnapshot{
		SnapshotID: uuid.New().String(),
		Name:       name,
		Rows:       m.Rows(),
		Cols:       m.Cols(),
		CellSize:   m.CellSize(),
		OriginX:    m.Origin().X,
		OriginY:    m.Origin().Y,
		Reason:     reason,
		CellsBlob:  blob,
		CreatedAt:  s.Clock.Now().UnixNano(),
	}

	_, err = s.db.Exec(`
		INSERT INTO map_snapshots (
			snapshot_id, name, rows, cols, cell_size,
			origin_x, origin_y, snapshot_reason, cells_blob, created_at_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.SnapshotID, snap.Name, snap.Rows, snap.Cols, snap.CellSize,
		snap.OriginX, snap.OriginY, snap.Reason, snap.CellsBlob, snap.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// GetByID returns a single snapshot by ID.
func (s *SnapshotStore) GetByID(snapshotID string) (*MapSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, name, rows, cols, cell_size,
		       origin_x, origin_y, snapshot_reason, cells_blob, created_at_unix_nanos
		FROM map_snapshots
		WHERE snapshot_id = ?`, snapshotID)

	snap, err := scanSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("snapshot %s not found", snapshotID)
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	return snap, nil
}

// Latest returns the most recently created snapshot under name.
func (s *SnapshotStore) Latest(name string) (*MapSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, name, rows, cols, cell_size,
		       origin_x, origin_y, snapshot_reason, cells_blob, created_at_unix_nanos
		FROM map_snapshots
		WHERE name = ?
		ORDER BY created_at_unix_nanos DESC
		LIMIT 1`, name)

	snap, err := scanSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no snapshots named %q", name)
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	return snap, nil
}

// List returns snapshots newest first, filtered by name unless name is
// empty.
func (s *SnapshotStore) List(name string) ([]*MapSnapshot, error) {
	query := `
		SELECT snapshot_id, name, rows, cols, cell_size,
		       origin_x, origin_y, snapshot_reason, cells_blob, created_at_unix_nanos
		FROM map_snapshots`
	args := []interface{}{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY created_at_unix_nanos DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*MapSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Restore reconstructs the grid map a snapshot was taken from. The result
// is numerically identical to the saved map, not an 8-bit approximation.
func (s *SnapshotStore) Restore(snap *MapSnapshot) (*gridmap.GridMap, error) {
	cells, err := deserializeCells(snap.CellsBlob)
	if err != nil {
		return nil, fmt.Errorf("deserialize cells: %w", err)
	}
	if len(cells) != snap.Rows*snap.Cols {
		return nil, fmt.Errorf("snapshot %s: blob has %d cells, dimensions say %d",
			snap.SnapshotID, len(cells), snap.Rows*snap.Cols)
	}

	m := gridmap.New(snap.Rows, snap.Cols, snap.CellSize,
		gridmap.WorldPoint{X: snap.OriginX, Y: snap.OriginY})
	m.Load(cells)
	return m, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*MapSnapshot, error) {
	var snap MapSnapshot
	var reason sql.NullString
	err := row.Scan(
		&snap.SnapshotID, &snap.Name, &snap.Rows, &snap.Cols, &snap.CellSize,
		&snap.OriginX, &snap.OriginY, &reason, &snap.CellsBlob, &snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	snap.Reason = reason.String
	return &snap, nil
}

// serializeCells compresses a row-major log-odds buffer using gob encoding
// and gzip compression.
func serializeCells(cells []float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(cells); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeCells decompresses and decodes a log-odds buffer from a
// gob+gzip blob.
func deserializeCells(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty cells blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var cells []float64
	dec := gob.NewDecoder(gz)
	if err := dec.Decode(&cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	return cells, nil
}
