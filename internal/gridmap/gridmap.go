package gridmap

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrOutOfBounds reports a cell index or continuous map coordinate outside
// the map area. At, Update and Interpolate wrap it with the offending
// coordinates; match with errors.Is.
var ErrOutOfBounds = errors.New("coordinates outside map bounds")

// GridMap is a dense rows x cols occupancy grid. Each cell stores the
// log-odds of that region being occupied; fresh cells hold log-odds 0,
// probability 0.5, "unknown". Row indexes run along the Y axis and column
// indexes along X, with origin naming the world position of map coordinate
// (0,0) and cellSize the world extent of one cell.
//
// Dimensions are fixed for the life of the map. The backing matrix is never
// shared: every container a GridMap hands out is an independent copy.
type GridMap struct {
	cells    *mat.Dense // rows x cols log-odds scores, row-major
	rows     int
	cols     int
	origin   WorldPoint
	cellSize float64 // world units per cell, uniform in both axes; > 0
}

// New creates a rows x cols map with every cell at log-odds 0. cellSize
// must be positive; it is not validated here, the transforms divide by it.
func New(rows, cols int, cellSize float64, origin WorldPoint) *GridMap {
	return &GridMap{
		cells:    mat.NewDense(rows, cols, nil),
		rows:     rows,
		cols:     cols,
		origin:   origin,
		cellSize: cellSize,
	}
}

// Rows returns the number of grid rows (the Y extent in cells).
func (m *GridMap) Rows() int { return m.rows }

// Cols returns the number of grid columns (the X extent in cells).
func (m *GridMap) Cols() int { return m.cols }

// CellSize returns the world extent of one cell.
func (m *GridMap) CellSize() float64 { return m.cellSize }

// Origin returns the world position of map coordinate (0,0).
func (m *GridMap) Origin() WorldPoint { return m.origin }

// Inside reports whether the integer cell (row, col) lies on the grid.
func (m *GridMap) Inside(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// InsideMap reports whether a continuous map coordinate lies within
// [0, rows) x [0, cols). This is the continuous counterpart of Inside,
// used by Interpolate and by callers pre-filtering beam endpoints.
func (m *GridMap) InsideMap(p MapPoint) bool {
	return p.Y >= 0 && p.Y < float64(m.rows) &&
		p.X >= 0 && p.X < float64(m.cols)
}

// At returns the occupancy probability of cell (row, col), or
// ErrOutOfBounds when the cell is off the grid.
func (m *GridMap) At(row, col int) (float64, error) {
	if !m.Inside(row, col) {
		return 0, fmt.Errorf("cell (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return LogOddsToProbability(m.cells.At(row, col)), nil
}

// Update folds one occupancy observation into cell (row, col): the
// observation's log-odds are added to the stored score and the result is
// clamped to ±MaxLogOdds. This is the recursive Bayes update assuming
// independent observations. Probabilities at or beyond 0 and 1 are not
// validated (see ProbabilityToLogOdds).
func (m *GridMap) Update(row, col int, probability float64) error {
	if !m.Inside(row, col) {
		return fmt.Errorf("cell (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	score := m.cells.At(row, col) + ProbabilityToLogOdds(probability)
	m.cells.Set(row, col, clampLogOdds(score))
	return nil
}

// Load bulk-replaces the grid from a row-major buffer of exactly rows*cols
// log-odds values. Any other length is a caller bug: no validation is
// performed and only the overlapping prefix is copied.
func (m *GridMap) Load(buffer []float64) {
	copy(m.cells.RawMatrix().Data, buffer)
}

// LogOdds returns a row-major copy of every cell's log-odds score. The
// slice is independent of the map's storage and round-trips through Load.
func (m *GridMap) LogOdds() []float64 {
	out := make([]float64, m.rows*m.cols)
	copy(out, m.cells.RawMatrix().Data)
	return out
}

// Clear resets every cell to log-odds 0 (probability 0.5).
func (m *GridMap) Clear() {
	m.cells.Zero()
}

// Equals reports structural equality within an absolute tolerance: the
// origins, the cell sizes, and every cell's log-odds must each differ by no
// more than tol. Maps with different dimensions are never equal.
func (m *GridMap) Equals(other *GridMap, tol float64) bool {
	if other == nil {
		return false
	}
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	if math.Abs(m.origin.X-other.origin.X) > tol ||
		math.Abs(m.origin.Y-other.origin.Y) > tol {
		return false
	}
	if math.Abs(m.cellSize-other.cellSize) > tol {
		return false
	}
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			if math.Abs(m.cells.At(row, col)-other.cells.At(row, col)) > tol {
				return false
			}
		}
	}
	return true
}

// String renders a diagnostic dump of the map: cell size, origin, then the
// full probability grid in row-major order. There is no parser for this
// format; use WriteOccupancyGrid for machine-readable output.
func (m *GridMap) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  cell size: %g\n", m.cellSize)
	fmt.Fprintf(&b, "  origin: ( %g , %g )\n", m.origin.X, m.origin.Y)
	for row := 0; row < m.rows; row++ {
		if row == 0 {
			b.WriteString("  data:")
		} else {
			b.WriteString("       ")
		}
		for col := 0; col < m.cols; col++ {
			fmt.Fprintf(&b, " %g", LogOddsToProbability(m.cells.At(row, col)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
