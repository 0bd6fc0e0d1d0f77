// Package mapviz renders occupancy grid maps for humans: static heatmap
// images via gonum/plot and self-contained HTML reports via go-echarts.
// Nothing here feeds back into mapping; rendering quality issues are
// cosmetic only.
package mapviz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/gridmap/internal/gridmap"
)

// HeatmapOptions controls RenderHeatmapPNG. Zero values pick sensible
// defaults, so HeatmapOptions{} is a valid argument.
type HeatmapOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Colors int // number of palette steps
}

// probGrid adapts a GridMap to plotter.GridXYZ: the probability field
// addressed by the world coordinates of the cell centres.
type probGrid struct {
	m     *gridmap.GridMap
	cells []float64
}

func newProbGrid(m *gridmap.GridMap) probGrid {
	return probGrid{m: m, cells: m.LogOdds()}
}

func (g probGrid) Dims() (c, r int) { return g.m.Cols(), g.m.Rows() }

func (g probGrid) Z(c, r int) float64 {
	return gridmap.LogOddsToProbability(g.cells[r*g.m.Cols()+c])
}

func (g probGrid) X(c int) float64 {
	return g.m.ToWorld(gridmap.MapPoint{X: float64(c) + 0.5}).X
}

func (g probGrid) Y(r int) float64 {
	return g.m.ToWorld(gridmap.MapPoint{Y: float64(r) + 0.5}).Y
}

// RenderHeatmapPNG draws the map's probability field as a heatmap and
// saves it to path (format chosen by extension, normally .png). The colour
// scale is pinned to [0,1] so images from different maps are comparable.
func RenderHeatmapPNG(m *gridmap.GridMap, path string, o HeatmapOptions) error {
	if o.Title == "" {
		o.Title = "Occupancy"
	}
	if o.Width == 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 6 * vg.Inch
	}
	if o.Colors <= 0 {
		o.Colors = 12
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "X (world)"
	p.Y.Label.Text = "Y (world)"

	hm := plotter.NewHeatMap(newProbGrid(m), palette.Heat(o.Colors, 1))
	hm.Min = 0
	hm.Max = 1
	p.Add(hm)

	if err := p.Save(o.Width, o.Height, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
