package gridmap

// ToWorld converts a continuous map coordinate (cell units) into world
// coordinates: world = cellSize*map + origin.
func (m *GridMap) ToWorld(p MapPoint) WorldPoint {
	return WorldPoint{
		X: m.cellSize*p.X + m.origin.X,
		Y: m.cellSize*p.Y + m.origin.Y,
	}
}

// FromWorld converts a world coordinate into the continuous map frame:
// map = (world - origin) / cellSize. ToWorld and FromWorld are exact
// inverses; neither snaps to a cell, so callers floor or round the result
// when they need a discrete index.
func (m *GridMap) FromWorld(p WorldPoint) MapPoint {
	return MapPoint{
		X: (p.X - m.origin.X) / m.cellSize,
		Y: (p.Y - m.origin.Y) / m.cellSize,
	}
}
