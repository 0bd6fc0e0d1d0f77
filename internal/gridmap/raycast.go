package gridmap

import "math"

// LineCell is one grid cell traversed by a beam, annotated with the world
// points where the beam enters and exits that cell's bounding box. Values
// are owned by the caller; the map retains nothing.
type LineCell struct {
	Row   int
	Col   int
	Entry WorldPoint
	Exit  WorldPoint
}

// FindIntersections computes where the ray running from start towards end
// crosses an axis-aligned box, by the slab method: the ray's unit direction
// and its component-wise reciprocal give four candidate parameters against
// the box's half-planes, and the entry/exit parameters are
// tmin = max(min(t1,t2), min(t3,t4)), tmax = min(max(t1,t2), max(t3,t4)).
//
// Axis-aligned rays make one reciprocal component ±Inf; IEEE arithmetic
// still yields the correct slab parameters, so there is no special case.
// Boxes behind the ray or missed entirely are not detected — Line only
// queries boxes the beam actually traverses.
func FindIntersections(start, end, lowerLeft, upperRight WorldPoint) (entry, exit WorldPoint) {
	dirX := end.X - start.X
	dirY := end.Y - start.Y
	norm := math.Hypot(dirX, dirY)
	dirX /= norm
	dirY /= norm
	invX := 1.0 / dirX
	invY := 1.0 / dirY

	t1 := (lowerLeft.X - start.X) * invX
	t2 := (upperRight.X - start.X) * invX
	t3 := (lowerLeft.Y - start.Y) * invY
	t4 := (upperRight.Y - start.Y) * invY

	tmin := math.Max(math.Min(t1, t2), math.Min(t3, t4))
	tmax := math.Min(math.Max(t1, t2), math.Max(t3, t4))

	entry = WorldPoint{X: start.X + tmin*dirX, Y: start.Y + tmin*dirY}
	exit = WorldPoint{X: start.X + tmax*dirX, Y: start.Y + tmax*dirY}
	return entry, exit
}

// Line rasterizes the beam from start to end (world coordinates) into the
// ordered sequence of grid cells it passes through, each annotated with its
// true entry and exit points from FindIntersections.
//
// The walk advances one cell per step along the dominant axis, scaling the
// minor axis by the slope, and always consumes the full line length: cells
// outside the grid are skipped without terminating the walk, so a beam that
// leaves the map and re-enters still produces the cells on the far side.
//
// An integer Bresenham walk is unsuitable here: with fractional endpoints
// it emits cells the continuous line never touches, which corrupts the
// entry/exit metadata.
func (m *GridMap) Line(start, end WorldPoint) []LineCell {
	var cells []LineCell

	startMap := m.FromWorld(start)
	endMap := m.FromWorld(end)

	dx := math.Abs(endMap.X - startMap.X)
	sx := 1.0
	if startMap.X >= endMap.X {
		sx = -1.0
	}
	dy := math.Abs(endMap.Y - startMap.Y)
	sy := 1.0
	if startMap.Y >= endMap.Y {
		sy = -1.0
	}

	// Unit step along the dominant axis; total distance to consume is the
	// dominant-axis span.
	var delta MapPoint
	var remaining float64
	if dx > dy {
		delta = MapPoint{X: sx, Y: sy * (dy / dx)}
		remaining = dx
	} else {
		delta = MapPoint{X: sx * (dx / dy), Y: sy}
		remaining = dy
	}

	point := startMap
	for {
		col := int(math.Floor(point.X))
		row := int(math.Floor(point.Y))

		if m.Inside(row, col) {
			boxMin := m.ToWorld(MapPoint{X: float64(col), Y: float64(row)})
			boxMax := m.ToWorld(MapPoint{X: float64(col) + 1, Y: float64(row) + 1})
			entry, exit := FindIntersections(start, end, boxMin, boxMax)
			cells = append(cells, LineCell{Row: row, Col: col, Entry: entry, Exit: exit})
		}

		if remaining <= 0 {
			break
		}

		// Partial step at the end of the line so the final cell is the one
		// containing the endpoint.
		step := math.Min(remaining, 1.0)
		point.X += step * delta.X
		point.Y += step * delta.Y
		remaining -= step
	}

	return cells
}
