// Package mapstore contains the SQLite persistence layer for occupancy
// grid maps.
//
// All database read/write operations for map snapshots belong here rather
// than in internal/gridmap, which stays free of SQL noise. Snapshots store
// the full log-odds field as a compressed blob next to the map geometry,
// so a restored map is numerically identical to the one saved (unlike the
// 8-bit PGM export, which quantizes).
//
// Schema baseline ships embedded (applied on open with IF NOT EXISTS);
// later schema changes travel as golang-migrate files under migrations/.
package mapstore
