package entities

import (
	"errors"
	"math"
	"testing"

	"gridmatch/internal/geom"
)

func TestNewEdge_RequiresTwoPoints(t *testing.T) {
	_, err := NewEdge("e1", "stub", []geom.Point{{X: 0, Y: 0}})
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Expected ErrInvalidShape, got %v", err)
	}

	edge, err := NewEdge("e1", "road", []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}})
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if edge.ID != "e1" || len(edge.Shape) != 2 {
		t.Errorf("Unexpected edge %+v", edge)
	}
}

func TestEdge_Segments(t *testing.T) {
	edge, err := NewEdge("e1", "polyline", []geom.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
	})
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}

	segments := edge.Segments()
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segments))
	}
	if segments[0].B != (geom.Point{X: 1, Y: 0}) || segments[1].A != (geom.Point{X: 1, Y: 0}) {
		t.Error("Segments must share consecutive shape points")
	}

	if edge.Length() != 2 {
		t.Errorf("Expected length 2, got %g", edge.Length())
	}
}

func TestEdge_NearestPoint(t *testing.T) {
	edge, err := NewEdge("e1", "L-shape", []geom.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10},
	})
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}

	// Nearest point on the first leg.
	p := edge.NearestPoint(geom.Point{X: 3, Y: 4})
	if p != (geom.Point{X: 3, Y: 0}) {
		t.Errorf("Expected (3, 0), got %+v", p)
	}

	// Past the corner: nearest is on the second leg.
	p = edge.NearestPoint(geom.Point{X: 13, Y: 5})
	if p != (geom.Point{X: 10, Y: 5}) {
		t.Errorf("Expected (10, 5), got %+v", p)
	}

	// Distance agrees with the nearest point.
	if d := edge.DistanceToPoint(geom.Point{X: 3, Y: 4}); math.Abs(d-4) > 1e-12 {
		t.Errorf("Expected distance 4, got %g", d)
	}
}

func TestLocation_Defaults(t *testing.T) {
	loc := NewLocation(37.75, -122.45)
	if loc.StopType != StopTypeBreak {
		t.Errorf("Expected default stop type break, got %s", loc.StopType)
	}

	p := loc.Point()
	if p.X != -122.45 || p.Y != 37.75 {
		t.Errorf("Expected (lng, lat) ordering, got %+v", p)
	}
}
