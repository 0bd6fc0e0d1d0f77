// Package gridmap implements a 2-D log-odds occupancy grid map.
//
// Responsibilities: world/map coordinate transforms, bounds-checked
// log-odds reads and Bayesian updates, bilinear interpolation, beam
// rasterization with per-cell entry/exit geometry, separable smoothing,
// and PGM/YAML map export and import.
// Key types: GridMap, WorldPoint, MapPoint, LineCell.
//
// A GridMap is exclusively owned by its creator: nothing in this package
// locks, and concurrent mutation is undefined. Callers that share a map
// across goroutines must serialise access themselves.
//
// No SQL/database code is allowed in this package; persistence lives in
// internal/mapstore.
package gridmap
