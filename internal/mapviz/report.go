package mapviz

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/gridmap/internal/gridmap"
)

const (
	histogramBins = 20

	// maxReportCells caps the heatmap payload; bigger maps are sampled
	// by stride so the report stays loadable in a browser.
	maxReportCells = 10000
)

// viridis ramp shared by the debug charts.
var viridisColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteReportHTML renders a self-contained HTML report for the map: an
// occupancy heatmap over world coordinates, a probability histogram and
// summary statistics. The page is a plain file, no server involved.
func WriteReportHTML(m *gridmap.GridMap, path string) error {
	probs := probabilities(m)

	page := components.NewPage()
	page.AddCharts(occupancyHeatmap(m, probs), probabilityHistogram(probs))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func probabilities(m *gridmap.GridMap) []float64 {
	cells := m.LogOdds()
	probs := make([]float64, len(cells))
	for i, logOdds := range cells {
		probs[i] = gridmap.LogOddsToProbability(logOdds)
	}
	return probs
}

// sampledIndices returns every stride-th index below n.
func sampledIndices(n, stride int) []int {
	idx := make([]int, 0, n/stride+1)
	for i := 0; i < n; i += stride {
		idx = append(idx, i)
	}
	return idx
}

func occupancyHeatmap(m *gridmap.GridMap, probs []float64) *charts.HeatMap {
	rows, cols := m.Rows(), m.Cols()

	// Downsample by stride to keep the payload manageable.
	stride := 1
	if rows*cols > maxReportCells {
		stride = int(math.Ceil(math.Sqrt(float64(rows*cols) / float64(maxReportCells))))
	}
	rowIdx := sampledIndices(rows, stride)
	colIdx := sampledIndices(cols, stride)

	xLabels := make([]string, len(colIdx))
	for i, c := range colIdx {
		xLabels[i] = fmt.Sprintf("%.2f", m.ToWorld(gridmap.MapPoint{X: float64(c) + 0.5}).X)
	}
	yLabels := make([]string, len(rowIdx))
	for i, r := range rowIdx {
		yLabels[i] = fmt.Sprintf("%.2f", m.ToWorld(gridmap.MapPoint{Y: float64(r) + 0.5}).Y)
	}

	data := make([]opts.HeatMapData, 0, len(rowIdx)*len(colIdx))
	for yi, r := range rowIdx {
		for xi, c := range colIdx {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, probs[r*cols+c]}})
		}
	}

	occupied, free := 0, 0
	for _, p := range probs {
		switch {
		case p > gridmap.OccupiedThresh:
			occupied++
		case p < gridmap.FreeThresh:
			free++
		}
	}
	mean := stat.Mean(probs, nil)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Occupancy Map Report", Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Occupancy Map",
			Subtitle: fmt.Sprintf("%dx%d cells=%d occupied=%d free=%d mean_p=%.3f stride=%d",
				rows, cols, len(probs), occupied, free, mean, stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "X (world)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "Y (world)", Data: yLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries("occupancy", data)
	return hm
}

func probabilityHistogram(probs []float64) *charts.Bar {
	sorted := make([]float64, len(probs))
	copy(sorted, probs)
	sort.Float64s(sorted)

	dividers := make([]float64, histogramBins+1)
	for i := range dividers {
		dividers[i] = float64(i) / histogramBins
	}
	// A fully saturated cell rounds to probability 1.0, which the half-open
	// final bucket would reject.
	dividers[histogramBins] = math.Nextafter(1.0, 2.0)

	counts := stat.Histogram(nil, dividers, sorted, nil)

	x := make([]string, histogramBins)
	y := make([]opts.BarData, histogramBins)
	for i := 0; i < histogramBins; i++ {
		x[i] = fmt.Sprintf("%.2f", float64(i)/histogramBins)
		y[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Probability Distribution", Subtitle: fmt.Sprintf("%d buckets, bucket width %.2f", histogramBins, 1.0/histogramBins)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("cells", y)
	return bar
}
