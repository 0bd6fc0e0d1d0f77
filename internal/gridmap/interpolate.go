package gridmap

import (
	"fmt"
	"math"
)

// Interpolate returns the occupancy probability at a continuous map
// coordinate, bilinearly blended from the 2x2 neighbour quartet around it.
// The quartet's lower corner is the floor of each component, clamped at the
// top edges so the upper neighbour stays on the grid (edge clamp, never
// extrapolation). At exact integer coordinates the result equals At for
// that cell.
//
// Returns ErrOutOfBounds when the point falls outside [0,rows) x [0,cols).
func (m *GridMap) Interpolate(p MapPoint) (float64, error) {
	if !m.InsideMap(p) {
		return 0, fmt.Errorf("map point (%g,%g): %w", p.X, p.Y, ErrOutOfBounds)
	}

	x1 := int(math.Floor(p.X))
	var x2 int
	if x1 >= m.cols-1 {
		x1 = m.cols - 2
		x2 = m.cols - 1
	} else {
		x2 = x1 + 1
	}
	y1 := int(math.Floor(p.Y))
	var y2 int
	if y1 >= m.rows-1 {
		y1 = m.rows - 2
		y2 = m.rows - 1
	} else {
		y2 = y1 + 1
	}

	q11, err := m.At(y1, x1)
	if err != nil {
		return 0, err
	}
	q12, err := m.At(y1, x2)
	if err != nil {
		return 0, err
	}
	q21, err := m.At(y2, x1)
	if err != nil {
		return 0, err
	}
	q22, err := m.At(y2, x2)
	if err != nil {
		return 0, err
	}

	// Fractional distances to the two column samples and two row samples.
	dx21 := float64(x2 - x1)
	dx2p := float64(x2) - p.X
	dxp1 := p.X - float64(x1)
	dy21 := float64(y2 - y1)
	dy2p := float64(y2) - p.Y
	dyp1 := p.Y - float64(y1)

	r1 := (dx2p/dx21)*q11 + (dxp1/dx21)*q12
	r2 := (dx2p/dx21)*q21 + (dxp1/dx21)*q22

	return (dy2p/dy21)*r1 + (dyp1/dy21)*r2, nil
}
