// Package geo implements a uniform-grid spatial index for line segments,
// used to answer "which road edges lie near this point?" queries during
// map matching.
//
// The idea: rasterise a bounding region into fixed-size cells, record each
// segment in every cell it passes through, and answer range queries by
// scanning only the cells that overlap the query rectangle. This replaces a
// full scan over every edge in the graph with a handful of cell lookups —
// the same coarse-filter trick a geohash index plays, but exact about which
// cells a *segment* (not just a point) touches.
//
// Go Learning Note — Generics (Type Parameters):
// GridIndex[K comparable] is generic over its key type. The index never
// inspects keys; it only stores them and later puts them in a map, which is
// why the constraint is `comparable` (map keys must support ==). Callers pick
// whatever handle type identifies an edge in their graph — a string UUID, an
// int64, a small struct. Before Go 1.18 this would have been interface{} with
// casts at every call site; type parameters give the same flexibility with
// compile-time safety.
package geo

import (
	"errors"
	"fmt"
	"math"

	"gridmatch/internal/geom"
)

// ErrInvalidGeometry is returned by NewGridIndex when the bounding box or
// the requested cell dimensions have a non-positive extent. Construction is
// the only operation that can fail; inserts and queries tolerate any input.
var ErrInvalidGeometry = errors.New("geo: invalid grid geometry")

// BBoxIntersection records one crossing between a segment and one side of a
// bounding box: the crossing point plus the unit step (DX, DY) into the cell
// on the far side of that boundary.
//
// The direction pair is the load-bearing part. The grid walk steps from cell
// to cell by applying (DX, DY) directly; it never re-derives the neighbour
// from the crossing coordinates, which would be fragile exactly where it
// matters most (crossings at or near cell corners).
type BBoxIntersection struct {
	Point  geom.Point
	DX, DY int
}

// GridIndex is a dense uniform grid over a bounding region. Each cell holds
// the keys of every segment that crosses it. Cells are addressed (i, j)
// with i counting columns along the x-axis and j counting rows along the
// y-axis, and stored flat at items[i + j*numCols].
//
// The index is append-only: segments can be added but never removed, and all
// grid geometry is fixed at construction. One writer may add segments; once
// loading is done, any number of readers may query concurrently. Interleaved
// reads and writes need external locking (see services.IndexService).
type GridIndex[K comparable] struct {
	bbox       geom.BBox
	cellWidth  float64
	cellHeight float64
	numCols    int
	numRows    int
	items      [][]K
}

// NewGridIndex builds an empty grid over bbox with the requested cell size.
// Cell dimensions are clamped so a single cell never exceeds the grid
// extent; column and row counts round up so the cells always cover the full
// box. Returns ErrInvalidGeometry if any extent is non-positive.
func NewGridIndex[K comparable](bbox geom.BBox, cellWidth, cellHeight float64) (*GridIndex[K], error) {
	if cellWidth <= 0 {
		return nil, fmt.Errorf("%w: cell width %v (require positive width)", ErrInvalidGeometry, cellWidth)
	}
	if cellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell height %v (require positive height)", ErrInvalidGeometry, cellHeight)
	}
	if bbox.Width() <= 0 {
		return nil, fmt.Errorf("%w: bounding box width %v (require positive width)", ErrInvalidGeometry, bbox.Width())
	}
	if bbox.Height() <= 0 {
		return nil, fmt.Errorf("%w: bounding box height %v (require positive height)", ErrInvalidGeometry, bbox.Height())
	}

	g := &GridIndex[K]{
		bbox:       bbox,
		cellWidth:  math.Min(bbox.Width(), cellWidth),
		cellHeight: math.Min(bbox.Height(), cellHeight),
	}
	g.numCols = int(math.Ceil(bbox.Width() / g.cellWidth))
	g.numRows = int(math.Ceil(bbox.Height() / g.cellHeight))
	g.items = make([][]K, g.numCols*g.numRows)
	return g, nil
}

// BBox returns the grid's outer bounding box.
func (g *GridIndex[K]) BBox() geom.BBox { return g.bbox }

// NumCols returns the number of cell columns (partitions along the x-axis).
func (g *GridIndex[K]) NumCols() int { return g.numCols }

// NumRows returns the number of cell rows (partitions along the y-axis).
func (g *GridIndex[K]) NumRows() int { return g.numRows }

// CellWidth returns the effective cell width.
func (g *GridIndex[K]) CellWidth() float64 { return g.cellWidth }

// CellHeight returns the effective cell height.
func (g *GridIndex[K]) CellHeight() float64 { return g.cellHeight }

// GridCoordinates maps a point to the (i, j) coordinates of the cell that
// contains it. The result is NOT clamped: points outside the bounding box
// map to out-of-range coordinates, and callers that need valid indices must
// clamp explicitly (Query does).
func (g *GridIndex[K]) GridCoordinates(p geom.Point) (int, int) {
	i := int(math.Floor((p.X - g.bbox.MinX) / g.cellWidth))
	j := int(math.Floor((p.Y - g.bbox.MinY) / g.cellHeight))
	return i, j
}

// CellBoundingBox returns the bounding box of cell (i, j). Panics if the
// cell is out of range.
func (g *GridIndex[K]) CellBoundingBox(i, j int) geom.BBox {
	g.checkCell(i, j)
	return geom.BBox{
		MinX: g.bbox.MinX + float64(i)*g.cellWidth,
		MinY: g.bbox.MinY + float64(j)*g.cellHeight,
		MaxX: g.bbox.MinX + float64(i+1)*g.cellWidth,
		MaxY: g.bbox.MinY + float64(j+1)*g.cellHeight,
	}
}

// CellCenter returns the centre point of cell (i, j). It tolerates
// out-of-range coordinates, answering for the cell the grid would have at
// that address.
func (g *GridIndex[K]) CellCenter(i, j int) geom.Point {
	return geom.Point{
		X: g.bbox.MinX + (float64(i)+0.5)*g.cellWidth,
		Y: g.bbox.MinY + (float64(j)+0.5)*g.cellHeight,
	}
}

// ItemsInCell returns the keys recorded in cell (i, j), in insertion order,
// duplicates included. The returned slice is the index's own storage —
// callers must not modify it. Panics if the cell is out of range.
func (g *GridIndex[K]) ItemsInCell(i, j int) []K {
	g.checkCell(i, j)
	return g.items[i+j*g.numCols]
}

// checkCell panics on an out-of-range cell address. Returning a neighbouring
// cell's items for a bad (i, j) would be a silent wrong answer; a loud panic
// at the offending call site is the only acceptable failure mode here.
func (g *GridIndex[K]) checkCell(i, j int) {
	if i < 0 || i >= g.numCols || j < 0 || j >= g.numRows {
		panic(fmt.Sprintf("geo: cell (%d, %d) out of range for %dx%d grid", i, j, g.numCols, g.numRows))
	}
}

// Unlerp is the inverse of linear interpolation: given a point p on (or
// near) the line through a and b, it returns t such that p = a + t*(b-a).
//
// The division axis is chosen by the larger absolute component of b-a.
// For a nearly horizontal segment the y-deltas are tiny, and dividing by
// one amplifies floating-point noise into wildly wrong t values; dividing
// along the dominant axis keeps the result stable. The grid walk's
// termination test runs on these t values, so this choice is not a nicety.
func Unlerp(a, b, p geom.Point) float64 {
	if math.Abs(b.X-a.X) > math.Abs(b.Y-a.Y) {
		return (p.X - a.X) / (b.X - a.X)
	}
	return (p.Y - a.Y) / (b.Y - a.Y)
}

// BBoxSegmentIntersections enumerates the crossings between a segment and
// the four sides of a bounding box, tagging each crossing with the unit
// direction into the neighbouring cell beyond that side. Sides are tested
// in a fixed order — bottom, right, top, left — so results are stable for
// identical inputs; a segment passing exactly through a corner yields a
// record per touched side.
func BBoxSegmentIntersections(box geom.BBox, segment geom.LineSegment) []BBoxIntersection {
	sides := [4]struct {
		edge   geom.LineSegment
		dx, dy int
	}{
		{geom.LineSegment{A: geom.Point{X: box.MinX, Y: box.MinY}, B: geom.Point{X: box.MaxX, Y: box.MinY}}, 0, -1},
		{geom.LineSegment{A: geom.Point{X: box.MaxX, Y: box.MinY}, B: geom.Point{X: box.MaxX, Y: box.MaxY}}, 1, 0},
		{geom.LineSegment{A: geom.Point{X: box.MaxX, Y: box.MaxY}, B: geom.Point{X: box.MinX, Y: box.MaxY}}, 0, 1},
		{geom.LineSegment{A: geom.Point{X: box.MinX, Y: box.MaxY}, B: geom.Point{X: box.MinX, Y: box.MinY}}, -1, 0},
	}

	var intersections []BBoxIntersection
	for _, side := range sides {
		if p, ok := segment.Intersect(side.edge); ok {
			intersections = append(intersections, BBoxIntersection{Point: p, DX: side.dx, DY: side.dy})
		}
	}
	return intersections
}

// cellSegmentIntersections enumerates the crossings between a segment and
// the sides of cell (i, j).
func (g *GridIndex[K]) cellSegmentIntersections(i, j int, segment geom.LineSegment) []BBoxIntersection {
	return BBoxSegmentIntersections(g.CellBoundingBox(i, j), segment)
}

// InteriorLineSegment clips a segment to the grid's bounding box, returning
// the sub-segment that lies inside it and true, or false when nothing does.
//
// Candidates for the clipped endpoints are the segment's crossings with the
// box boundary plus whichever original endpoints already sit inside the box.
// Ranking every candidate by its parameter t along the segment and keeping
// the extremes handles all the entry/exit combinations uniformly: both ends
// inside, one end inside, or a clean pass through two different sides. A
// segment that only grazes the boundary at a single point (minT == maxT at
// 0 or 1) is treated as having no interior.
func (g *GridIndex[K]) InteriorLineSegment(segment geom.LineSegment) (geom.LineSegment, bool) {
	a, b := segment.A, segment.B

	if a == b {
		if g.bbox.Contains(a) {
			return geom.LineSegment{A: a, B: b}, true
		}
		return geom.LineSegment{}, false
	}

	var points []geom.Point
	for _, isect := range BBoxSegmentIntersections(g.bbox, segment) {
		points = append(points, isect.Point)
	}
	if g.bbox.Contains(a) {
		points = append(points, a)
	}
	if g.bbox.Contains(b) {
		points = append(points, b)
	}

	minT, maxT := 1.0, 0.0
	var minP, maxP geom.Point
	for _, p := range points {
		t := Unlerp(a, b, p)
		if t < minT {
			minT = t
			minP = p
		}
		if t > maxT {
			maxT = t
			maxP = p
		}
	}

	if minT < 1 && maxT > 0 {
		return geom.LineSegment{A: minP, B: maxP}, true
	}
	return geom.LineSegment{}, false
}

// AddLineSegment records key in every cell the segment passes through.
// Segments wholly outside the grid are ignored; segments partly outside are
// clipped first. Adding the same key twice appends twice — cells are bags,
// not sets, and de-duplication happens at query time.
//
// The walk steps cell to cell along the clipped segment. Each step
// enumerates the crossings between the remaining segment and the current
// cell's sides, then moves through the crossing whose neighbouring cell
// centre is closest to the segment's end — and only if that neighbour is
// strictly closer than the current cell's own centre.
//
// That strictness is what makes the loop safe. Near a cell corner,
// floating-point error can produce several near-duplicate crossing records,
// including ones that would step sideways or backwards; "step only on
// strict improvement, otherwise stop" guarantees every iteration gets
// measurably closer to the destination, so the walk can neither oscillate
// between two cells nor orbit a corner forever.
func (g *GridIndex[K]) AddLineSegment(key K, segment geom.LineSegment) {
	interior, ok := g.InteriorLineSegment(segment)
	if !ok {
		return
	}

	start, end := interior.A, interior.B
	current := start

	// A clipped endpoint can sit exactly on the bounding box's max edge,
	// where the floor maps it one past the last cell. Clamping folds those
	// boundary points into the cell they border.
	i, j := g.GridCoordinates(current)
	i = clamp(i, 0, g.numCols-1)
	j = clamp(j, 0, g.numRows-1)

	if start == end {
		g.appendToCell(i, j, key)
		return
	}

	for Unlerp(start, end, current) < 1 {
		g.appendToCell(i, j, key)

		remaining := geom.LineSegment{A: current, B: end}
		intersections := g.cellSegmentIntersections(i, j, remaining)

		// The current cell's own centre is the sentinel: a crossing only
		// wins by being strictly closer to the destination than staying put.
		bestD := end.DistanceSquared(g.CellCenter(i, j))
		noImprovement := bestD
		var best BBoxIntersection
		for _, isect := range intersections {
			ni, nj := i+isect.DX, j+isect.DY
			if ni < 0 || ni >= g.numCols || nj < 0 || nj >= g.numRows {
				// The clipped segment ends inside the grid, so a step off
				// the grid can never be on the way to it.
				continue
			}
			d := end.DistanceSquared(g.CellCenter(ni, nj))
			if d < bestD {
				bestD = d
				best = isect
			}
		}

		if bestD < noImprovement {
			current = best.Point
			i += best.DX
			j += best.DY
		} else {
			break
		}
	}

	// When the destination sits exactly on a cell boundary, the tie-break
	// stops the walk in the cell before it. The cell that owns the endpoint
	// still gets the key: a later query around the endpoint must find it.
	ei, ej := g.GridCoordinates(end)
	ei = clamp(ei, 0, g.numCols-1)
	ej = clamp(ej, 0, g.numRows-1)
	if ei != i || ej != j {
		g.appendToCell(ei, ej, key)
	}
}

func (g *GridIndex[K]) appendToCell(i, j int, key K) {
	g.items[i+j*g.numCols] = append(g.items[i+j*g.numCols], key)
}

// Query returns the set of keys recorded in any cell overlapping the given
// rectangle. The rectangle is clamped to the grid, so a query partly or
// wholly outside the bounding box is answered (possibly with an empty set)
// rather than rejected.
//
// The result is a superset of the keys whose segments actually intersect
// the rectangle: everything sharing a cell with the rectangle is reported,
// whether or not the underlying geometry touches it. Callers needing exact
// hits re-filter against the real geometry (see services.CandidateService).
//
// Go Learning Note — map[K]struct{} as a Set:
// Go has no set type; the idiom is a map whose value type is the empty
// struct. struct{} occupies zero bytes, so the map stores only its keys.
// Membership is `_, ok := set[k]` and insertion is `set[k] = struct{}{}`.
func (g *GridIndex[K]) Query(rect geom.BBox) map[K]struct{} {
	results := make(map[K]struct{})

	mini, minj := g.GridCoordinates(rect.Min())
	maxi, maxj := g.GridCoordinates(rect.Max())

	mini = clamp(mini, 0, g.numCols-1)
	maxi = clamp(maxi, 0, g.numCols-1)
	minj = clamp(minj, 0, g.numRows-1)
	maxj = clamp(maxj, 0, g.numRows-1)

	for i := mini; i <= maxi; i++ {
		for j := minj; j <= maxj; j++ {
			for _, key := range g.ItemsInCell(i, j) {
				results[key] = struct{}{}
			}
		}
	}

	return results
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
