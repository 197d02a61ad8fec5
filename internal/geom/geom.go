// Package geom provides the planar geometry primitives the spatial index is
// built on: points, axis-aligned bounding boxes, and line segments.
//
// All arithmetic here is planar (flat x/y plane). Geographic coordinates can
// be fed through these types directly — longitude as x, latitude as y — as
// long as the caller accepts that distances come back in degrees, not meters.
// The conversion between meters and degrees belongs to the caller (see
// pkg/utils), never to this package.
//
// Go Learning Note — Value Types for Small Structs:
// Point, BBox, and LineSegment are passed and returned by value throughout.
// A Point is 16 bytes (two float64s); copying it is cheaper than chasing a
// pointer and keeps these types trivially safe to share between goroutines.
// This mirrors how the standard library treats time.Time and image.Point.
package geom

import "math"

// Point is an immutable 2-D coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of two points (vector addition).
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// Sub returns the vector from other to p.
func (p Point) Sub(other Point) Point {
	return Point{p.X - other.X, p.Y - other.Y}
}

// Scale multiplies both components by f.
func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Dot returns the dot product, treating both points as vectors.
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Cross returns the z-component of the cross product, treating both points
// as vectors. Positive when other is counter-clockwise from p.
func (p Point) Cross(other Point) float64 {
	return p.X*other.Y - p.Y*other.X
}

// DistanceSquared returns the squared Euclidean distance to other.
//
// Squared distance avoids the math.Sqrt call, which matters in the grid
// walk's inner loop where distances are only ever compared, never reported.
func (p Point) DistanceSquared(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance to other.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}

// BBox is an axis-aligned bounding box. Invariant: MinX <= MaxX and
// MinY <= MaxY. Use NewBBox to build one from unordered corners.
type BBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NewBBox builds a BBox from two opposite corners in any order.
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// Width returns MaxX - MinX.
func (b BBox) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns MaxY - MinY.
func (b BBox) Height() float64 {
	return b.MaxY - b.MinY
}

// Min returns the lower-left corner.
func (b BBox) Min() Point {
	return Point{b.MinX, b.MinY}
}

// Max returns the upper-right corner.
func (b BBox) Max() Point {
	return Point{b.MaxX, b.MaxY}
}

// Center returns the midpoint of the box.
func (b BBox) Center() Point {
	return Point{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Contains reports whether p lies inside the box, boundary included.
func (b BBox) Contains(p Point) bool {
	return b.MinX <= p.X && p.X <= b.MaxX && b.MinY <= p.Y && p.Y <= b.MaxY
}

// Intersects reports whether the two boxes share any point.
func (b BBox) Intersects(other BBox) bool {
	return b.MinX <= other.MaxX && other.MinX <= b.MaxX &&
		b.MinY <= other.MaxY && other.MinY <= b.MaxY
}

// LineSegment is the straight segment between two points. A == B is a legal
// degenerate segment.
type LineSegment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Vector returns B - A.
func (s LineSegment) Vector() Point {
	return s.B.Sub(s.A)
}

// Length returns the Euclidean length of the segment.
func (s LineSegment) Length() float64 {
	return s.A.Distance(s.B)
}

// PointAt returns A + t*(B-A). t is not clamped.
func (s LineSegment) PointAt(t float64) Point {
	return s.A.Add(s.B.Sub(s.A).Scale(t))
}

// DistanceToPoint returns the minimum distance from p to any point on the
// segment, clamping the projection to the segment's extent.
func (s LineSegment) DistanceToPoint(p Point) float64 {
	d := s.B.Sub(s.A)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return s.A.Distance(p)
	}
	t := p.Sub(s.A).Dot(d) / lenSq
	t = math.Max(0, math.Min(1, t))
	return s.PointAt(t).Distance(p)
}

// Intersect computes the intersection of two segments using the parametric
// cross-product form. It reports a single point and true when the segments
// cross (endpoints touching counts); false when they miss.
//
// Two degenerate outcomes are pinned down because the grid walk depends on
// them being stable:
//   - Parallel but non-collinear segments never intersect.
//   - Collinear segments intersect only where their extents overlap, and
//     report s.A, the first segment's start, when it lies on other;
//     otherwise an endpoint of other that lies on s. The point is on both
//     segments. A single representative point is all the clipping code
//     needs; it finds the true extremes from the candidates it collects
//     separately.
func (s LineSegment) Intersect(other LineSegment) (Point, bool) {
	d1 := s.B.Sub(s.A)
	d2 := other.B.Sub(other.A)
	d12 := other.A.Sub(s.A)

	den := d1.Y*d2.X - d1.X*d2.Y
	u1 := d1.X*d12.Y - d1.Y*d12.X
	u2 := d2.X*d12.Y - d2.Y*d12.X

	if den == 0 {
		// Parallel. Both numerators vanishing means collinear; the segments
		// then meet only if one holds an endpoint of the other. Anything
		// else is a clean miss.
		if u1 == 0 && u2 == 0 {
			for _, c := range []struct {
				p   Point
				seg LineSegment
			}{{s.A, other}, {other.A, s}, {other.B, s}} {
				v, w := c.seg.Vector(), c.p.Sub(c.seg.A)
				if v == (Point{}) {
					if w == (Point{}) {
						return c.p, true
					}
				} else if w.Dot(v) >= 0 && w.Dot(v) <= v.Dot(v) {
					return c.p, true
				}
			}
		}
		return Point{}, false
	}

	t1 := u2 / den
	t2 := u1 / den
	if t1 < 0 || t1 > 1 || t2 < 0 || t2 > 1 {
		return Point{}, false
	}

	return s.PointAt(t1), true
}
