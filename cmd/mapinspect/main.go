// Package main inspects a saved occupancy grid map: it loads a PGM+YAML
// pair, prints dimensions, origin and occupancy statistics, and optionally
// renders a heatmap PNG or an HTML report from the loaded map.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/gridmap/internal/gridmap"
	"github.com/banshee-data/gridmap/internal/mapviz"
)

// Config holds configuration for the inspection run.
type Config struct {
	MapBase    string
	Threshold  float64
	HeatmapPNG string
	ReportHTML string
	Verbose    bool
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.MapBase, "map", "", "Base path of the PGM+YAML pair, without extension")
	flag.Float64Var(&cfg.Threshold, "threshold", gridmap.OccupiedThresh, "Probability above which a cell counts as occupied")
	flag.StringVar(&cfg.HeatmapPNG, "heatmap", "", "Optional path to render a heatmap PNG")
	flag.StringVar(&cfg.ReportHTML, "report", "", "Optional path to write an HTML report")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Print the grid itself (small maps only)")

	flag.Parse()

	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.MapBase == "" {
		log.Fatal("map base path is required (e.g. -map demo-out/demo)")
	}

	m, err := gridmap.ReadOccupancyGrid(cfg.MapBase)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}

	printStats(os.Stdout, m, cfg.Threshold)

	if cfg.Verbose {
		fmt.Print(m.String())
	}

	if cfg.HeatmapPNG != "" {
		if err := mapviz.RenderHeatmapPNG(m, cfg.HeatmapPNG, mapviz.HeatmapOptions{}); err != nil {
			log.Fatalf("Failed to render heatmap: %v", err)
		}
		log.Printf("wrote heatmap to %s", cfg.HeatmapPNG)
	}
	if cfg.ReportHTML != "" {
		if err := mapviz.WriteReportHTML(m, cfg.ReportHTML); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("wrote report to %s", cfg.ReportHTML)
	}
}

// printStats writes an occupancy summary of the map to w.
func printStats(w io.Writer, m *gridmap.GridMap, threshold float64) {
	rows, cols := m.Rows(), m.Cols()
	origin := m.Origin()

	occupied, free := 0, 0
	minP, maxP := 1.0, 0.0
	sum := 0.0
	for _, logOdds := range m.LogOdds() {
		p := gridmap.LogOddsToProbability(logOdds)
		sum += p
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
		switch {
		case p > gridmap.OccupiedThresh:
			occupied++
		case p < gridmap.FreeThresh:
			free++
		}
	}
	total := rows * cols
	unknown := total - occupied - free

	fmt.Fprintf(w, "dimensions:  %d rows x %d cols (%d cells)\n", rows, cols, total)
	fmt.Fprintf(w, "cell size:   %g\n", m.CellSize())
	fmt.Fprintf(w, "origin:      (%g, %g)\n", origin.X, origin.Y)
	fmt.Fprintf(w, "world area:  %g x %g\n", float64(cols)*m.CellSize(), float64(rows)*m.CellSize())
	fmt.Fprintf(w, "probability: min %.3f  mean %.3f  max %.3f\n", minP, sum/float64(total), maxP)
	fmt.Fprintf(w, "occupied:    %d (p > %.2f)\n", occupied, gridmap.OccupiedThresh)
	fmt.Fprintf(w, "free:        %d (p < %.2f)\n", free, gridmap.FreeThresh)
	fmt.Fprintf(w, "unknown:     %d\n", unknown)
	fmt.Fprintf(w, "points:      %d above threshold %.2f\n", len(m.Points(threshold)), threshold)
}
