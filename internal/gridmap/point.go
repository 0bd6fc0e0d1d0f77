package gridmap

// WorldPoint is a position in continuous world coordinates (e.g. meters).
// World and map coordinates are distinct types so mixing frames is a type
// error rather than a silent unit bug; convert between them only via
// GridMap.ToWorld and GridMap.FromWorld.
type WorldPoint struct {
	X float64
	Y float64
}

// MapPoint is a position in continuous map coordinates: grid-cell units
// where X runs along columns and Y along rows. Flooring the components of
// a MapPoint yields the (col, row) index of the containing cell.
type MapPoint struct {
	X float64
	Y float64
}
