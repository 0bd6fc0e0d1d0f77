package gridmap

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
)

// Occupancy classification thresholds recorded in the map metadata sidecar,
// matching the ROS map_server convention: cells above OccupiedThresh render
// as obstacles, cells below FreeThresh as open space, the band between as
// unknown.
const (
	OccupiedThresh = 0.80
	FreeThresh     = 0.20
)

// Points returns the map coordinates (X=col, Y=row) of every cell whose
// occupancy probability exceeds threshold, in row-major scan order. The
// comparison happens in log-odds space, so the grid is scanned without
// per-cell probability conversions.
func (m *GridMap) Points(threshold float64) []MapPoint {
	logOddsThreshold := ProbabilityToLogOdds(threshold)

	var points []MapPoint
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			if m.cells.At(row, col) > logOddsThreshold {
				points = append(points, MapPoint{X: float64(col), Y: float64(row)})
			}
		}
	}
	return points
}

// OccupancyGrid renders the map as 8-bit grayscale intensities,
// 255 - round(255*probability) per cell: black is certainly occupied,
// white certainly free, and the mid-gray 127 is the untouched prior.
// Each call returns a fresh matrix with no aliasing into the map.
func (m *GridMap) OccupancyGrid() [][]uint8 {
	grid := make([][]uint8, m.rows)
	for row := range grid {
		grid[row] = make([]uint8, m.cols)
		for col := 0; col < m.cols; col++ {
			p := LogOddsToProbability(m.cells.At(row, col))
			grid[row][col] = uint8(255 - math.Round(255*p))
		}
	}
	return grid
}

// WriteOccupancyGrid writes the rendered map as two sibling artifacts:
// base.pgm, a binary P5 graymap of OccupancyGrid's intensities, and
// base.yaml, the map_server metadata sidecar referencing it. base is the
// path without extension.
func (m *GridMap) WriteOccupancyGrid(base string) error {
	occupancy := m.OccupancyGrid()

	image, err := os.Create(base + ".pgm")
	if err != nil {
		return fmt.Errorf("create map image: %w", err)
	}
	defer image.Close()

	// Binary P5: ASCII header, then one raw byte per cell in row-major
	// order. os.File never translates newlines, so the payload bytes land
	// on disk exactly as rendered.
	w := bufio.NewWriter(image)
	fmt.Fprintf(w, "P5\n%d %d\n255\n", m.cols, m.rows)
	for _, row := range occupancy {
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("write map image: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write map image: %w", err)
	}
	if err := image.Close(); err != nil {
		return fmt.Errorf("write map image: %w", err)
	}

	meta, err := os.Create(base + ".yaml")
	if err != nil {
		return fmt.Errorf("create map metadata: %w", err)
	}
	defer meta.Close()

	mw := bufio.NewWriter(meta)
	if err := m.writeMetadata(mw, filepath.Base(base)+".pgm"); err != nil {
		return fmt.Errorf("write map metadata: %w", err)
	}
	if err := mw.Flush(); err != nil {
		return fmt.Errorf("write map metadata: %w", err)
	}
	if err := meta.Close(); err != nil {
		return fmt.Errorf("write map metadata: %w", err)
	}

	log.Printf("wrote occupancy grid %dx%d to %s.pgm", m.cols, m.rows, base)
	return nil
}

// writeMetadata emits the sidecar fields referencing imageName. Key order
// and number formatting are pinned; readers parse this file line by line.
func (m *GridMap) writeMetadata(w io.Writer, imageName string) error {
	lines := []string{
		fmt.Sprintf("image: %s", imageName),
		fmt.Sprintf("resolution: %g", m.cellSize),
		fmt.Sprintf("origin: [%g, %g, 0.0]", m.origin.X, m.origin.Y),
		"negate: 0",
		fmt.Sprintf("occupied_thresh: %.2f", OccupiedThresh),
		fmt.Sprintf("free_thresh: %.2f", FreeThresh),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
