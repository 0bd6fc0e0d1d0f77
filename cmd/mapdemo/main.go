// Package main builds a synthetic occupancy grid map and writes every
// artifact the toolchain produces: a PGM+YAML pair, a heatmap PNG, an HTML
// report and, optionally, a database snapshot. Useful as an end-to-end
// smoke run and as a generator of realistic inputs for mapinspect and
// mapsnap.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/gridmap/internal/gridmap"
	"github.com/banshee-data/gridmap/internal/mapstore"
	"github.com/banshee-data/gridmap/internal/mapviz"
)

// Config holds configuration for the demo map build.
type Config struct {
	OutputDir string
	Name      string
	Rows      int
	Cols      int
	CellSize  float64
	OriginX   float64
	OriginY   float64
	Beams     int
	Sigma     float64
	DBPath    string
}

// Inverse sensor model: what one beam says about the cells it crosses.
const (
	freeObservation     = 0.35
	occupiedObservation = 0.9
)

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.OutputDir, "output", "demo-out", "Output directory for artifacts")
	flag.StringVar(&cfg.Name, "name", "demo", "Base name for artifacts and snapshots")
	flag.IntVar(&cfg.Rows, "rows", 120, "Grid rows")
	flag.IntVar(&cfg.Cols, "cols", 160, "Grid columns")
	flag.Float64Var(&cfg.CellSize, "cell-size", 0.05, "World size of one cell")
	flag.Float64Var(&cfg.OriginX, "origin-x", 0, "World X of map cell (0,0)")
	flag.Float64Var(&cfg.OriginY, "origin-y", 0, "World Y of map cell (0,0)")
	flag.IntVar(&cfg.Beams, "beams", 720, "Number of beams in the simulated scan")
	flag.Float64Var(&cfg.Sigma, "sigma", 0, "Gaussian smoothing sigma in world units (0 = no smoothing)")
	flag.StringVar(&cfg.DBPath, "db", "", "Optional snapshot database path")

	flag.Parse()

	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		log.Fatal("rows and cols must be positive")
	}
	if cfg.CellSize <= 0 {
		log.Fatal("cell-size must be positive")
	}
	if cfg.Beams <= 0 {
		log.Fatal("beams must be positive")
	}

	m := buildDemoMap(cfg)

	if cfg.Sigma > 0 {
		m.Smooth(cfg.Sigma)
		log.Printf("smoothed map with sigma %g", cfg.Sigma)
	}

	if err := writeArtifacts(cfg, m); err != nil {
		log.Fatalf("Failed to write artifacts: %v", err)
	}

	if cfg.DBPath != "" {
		db, err := mapstore.NewDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		snap, err := mapstore.NewSnapshotStore(db.DB).Save(m, cfg.Name, "mapdemo")
		if err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		log.Printf("saved snapshot %s under name %q", snap.SnapshotID, snap.Name)
	}

	occupied := len(m.Points(gridmap.OccupiedThresh))
	log.Printf("demo map %dx%d done: %d cells above p=%.2f, artifacts under %s",
		cfg.Rows, cfg.Cols, occupied, gridmap.OccupiedThresh, cfg.OutputDir)
}

// box is an axis-aligned obstacle in world coordinates.
type box struct {
	minX, minY, maxX, maxY float64
}

func (b box) contains(p gridmap.WorldPoint) bool {
	return p.X >= b.minX && p.X <= b.maxX && p.Y >= b.minY && p.Y <= b.maxY
}

// buildDemoMap simulates a range sensor standing in the middle of a walled
// room with two rectangular obstacles. Beams fan out over a full circle;
// cells crossed before a hit observe free, the hit cell observes occupied,
// cells behind a hit stay unobserved. Beams are aimed past the map edge so
// a miss ends on a boundary wall cell.
func buildDemoMap(cfg Config) *gridmap.GridMap {
	origin := gridmap.WorldPoint{X: cfg.OriginX, Y: cfg.OriginY}
	m := gridmap.New(cfg.Rows, cfg.Cols, cfg.CellSize, origin)

	width := float64(cfg.Cols) * cfg.CellSize
	height := float64(cfg.Rows) * cfg.CellSize
	sensor := gridmap.WorldPoint{X: origin.X + width/2, Y: origin.Y + height/2}

	obstacles := []box{
		{
			minX: origin.X + 0.20*width, minY: origin.Y + 0.20*height,
			maxX: origin.X + 0.30*width, maxY: origin.Y + 0.35*height,
		},
		{
			minX: origin.X + 0.65*width, minY: origin.Y + 0.55*height,
			maxX: origin.X + 0.80*width, maxY: origin.Y + 0.65*height,
		},
	}

	maxRange := math.Hypot(width, height)
	for i := 0; i < cfg.Beams; i++ {
		angle := 2 * math.Pi * float64(i) / float64(cfg.Beams)
		end := gridmap.WorldPoint{
			X: sensor.X + maxRange*math.Cos(angle),
			Y: sensor.Y + maxRange*math.Sin(angle),
		}

		cells := m.Line(sensor, end)
		for j, c := range cells {
			centre := m.ToWorld(gridmap.MapPoint{X: float64(c.Col) + 0.5, Y: float64(c.Row) + 0.5})
			hit := false
			for _, ob := range obstacles {
				if ob.contains(centre) {
					hit = true
					break
				}
			}

			p := freeObservation
			if hit || j == len(cells)-1 {
				// A hit marks the obstacle cell; a miss ends on the
				// boundary wall, the last traversed cell.
				p = occupiedObservation
			}
			// Line emits only in-bounds cells, so Update cannot fail here.
			_ = m.Update(c.Row, c.Col, p)

			if hit {
				break
			}
		}
	}

	return m
}

// writeArtifacts emits the PGM+YAML pair and both renderings under
// cfg.OutputDir, all named after cfg.Name.
func writeArtifacts(cfg Config, m *gridmap.GridMap) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	base := filepath.Join(cfg.OutputDir, cfg.Name)
	if err := m.WriteOccupancyGrid(base); err != nil {
		return err
	}
	if err := mapviz.RenderHeatmapPNG(m, base+"_heatmap.png", mapviz.HeatmapOptions{Title: cfg.Name}); err != nil {
		return err
	}
	return mapviz.WriteReportHTML(m, base+"_report.html")
}
