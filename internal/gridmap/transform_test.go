package gridmap

import (
	"math"
	"testing"
)

func TestToWorld(t *testing.T) {
	m := New(10, 10, 2.0, WorldPoint{X: 10, Y: -5})

	got := m.ToWorld(MapPoint{X: 3, Y: 4})
	want := WorldPoint{X: 16, Y: 3}
	if got != want {
		t.Errorf("ToWorld((3,4)) = %+v, want %+v", got, want)
	}
}

func TestFromWorld(t *testing.T) {
	// A 1m x 1m map at 10cm resolution: world (0.25, 0.25) sits half way
	// into the third cell in both axes.
	m := New(10, 10, 0.1, WorldPoint{})

	got := m.FromWorld(WorldPoint{X: 0.25, Y: 0.25})
	if math.Abs(got.X-2.5) > 1e-12 || math.Abs(got.Y-2.5) > 1e-12 {
		t.Errorf("FromWorld((0.25,0.25)) = %+v, want (2.5, 2.5)", got)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	maps := []*GridMap{
		New(10, 10, 1.0, WorldPoint{}),
		New(10, 10, 0.1, WorldPoint{}),
		New(50, 30, 0.05, WorldPoint{X: -12.5, Y: 40}),
		New(3, 3, 2.5, WorldPoint{X: 0.3, Y: -0.7}),
	}
	points := []MapPoint{
		{X: 0, Y: 0},
		{X: 2.5, Y: 2.5},
		{X: 0.1, Y: 9.9},
		{X: -3.25, Y: 7},
	}

	for _, m := range maps {
		for _, p := range points {
			back := m.FromWorld(m.ToWorld(p))
			if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
				t.Errorf("cellSize %g origin %+v: point %+v came back as %+v",
					m.CellSize(), m.Origin(), p, back)
			}
		}
	}
}
