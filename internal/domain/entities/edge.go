package entities

import (
	"errors"
	"time"

	"gridmatch/internal/geom"
)

// ErrInvalidShape is returned when an edge's shape has fewer than two points.
var ErrInvalidShape = errors.New("entities: edge shape requires at least two points")

// RoadClass is a coarse importance ranking for an edge, highest first.
type RoadClass string

const (
	RoadClassMotorway    RoadClass = "motorway"
	RoadClassPrimary     RoadClass = "primary"
	RoadClassSecondary   RoadClass = "secondary"
	RoadClassResidential RoadClass = "residential"
	RoadClassService     RoadClass = "service"
)

// Edge is one directed edge of the road graph: an identifier plus the
// polyline geometry it follows. The spatial index stores only the ID; the
// geometry stays here, so a candidate search re-reads the shape to compute
// exact distances after the coarse grid lookup.
type Edge struct {
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	Class     RoadClass    `json:"class,omitempty"`
	SpeedKmh  float64      `json:"speed_kmh,omitempty"`
	Shape     []geom.Point `json:"shape"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewEdge creates an Edge, validating that the shape describes a drawable
// polyline. A two-point shape is the common case (a straight road segment);
// curved roads arrive as longer polylines.
func NewEdge(id, name string, shape []geom.Point) (*Edge, error) {
	if len(shape) < 2 {
		return nil, ErrInvalidShape
	}
	return &Edge{
		ID:        id,
		Name:      name,
		Shape:     shape,
		CreatedAt: time.Now(),
	}, nil
}

// Segments returns the consecutive line segments of the edge's polyline.
func (e *Edge) Segments() []geom.LineSegment {
	segments := make([]geom.LineSegment, 0, len(e.Shape)-1)
	for i := 0; i+1 < len(e.Shape); i++ {
		segments = append(segments, geom.LineSegment{A: e.Shape[i], B: e.Shape[i+1]})
	}
	return segments
}

// DistanceToPoint returns the minimum planar distance from p to any segment
// of the edge's polyline.
func (e *Edge) DistanceToPoint(p geom.Point) float64 {
	return e.NearestPoint(p).Distance(p)
}

// NearestPoint returns the point on the edge's polyline closest to p.
func (e *Edge) NearestPoint(p geom.Point) geom.Point {
	best := e.Shape[0]
	bestD := best.DistanceSquared(p)
	for _, s := range e.Segments() {
		candidate := nearestOnSegment(s, p)
		if d := candidate.DistanceSquared(p); d < bestD {
			best = candidate
			bestD = d
		}
	}
	return best
}

func nearestOnSegment(s geom.LineSegment, p geom.Point) geom.Point {
	d := s.B.Sub(s.A)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return s.A
	}
	t := p.Sub(s.A).Dot(d) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return s.PointAt(t)
}

// Length returns the total planar length of the polyline.
func (e *Edge) Length() float64 {
	var total float64
	for _, s := range e.Segments() {
		total += s.Length()
	}
	return total
}
