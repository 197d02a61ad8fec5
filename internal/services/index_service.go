package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gridmatch/internal/config"
	"gridmatch/internal/domain/entities"
	"gridmatch/internal/geo"
	"gridmatch/internal/geom"
	"gridmatch/internal/repository/memory"
)

// IndexService owns the spatial index and keeps it consistent with the edge
// repository: every edge stored is indexed, every ID in the grid resolves to
// a stored edge.
//
// The grid itself is a single-writer structure with no internal locking, so
// this service externalises the synchronisation: AddEdge takes the write
// lock, queries take the read lock. During the initial graph load that's a
// brief serial phase; afterwards reads run freely in parallel.
type IndexService struct {
	mu       sync.RWMutex
	grid     *geo.GridIndex[string]
	edgeRepo *memory.EdgeRepository
}

// GridShape is a read-only snapshot of the grid geometry, for the debug
// surface and for callers sizing their queries.
type GridShape struct {
	BBox       geom.BBox `json:"bbox"`
	NumCols    int       `json:"num_cols"`
	NumRows    int       `json:"num_rows"`
	CellWidth  float64   `json:"cell_width"`
	CellHeight float64   `json:"cell_height"`
}

// NewIndexService builds the grid from the configured region and cell size.
// Configuration errors (empty region, non-positive cell) surface here, at
// startup, as the grid constructor's ErrInvalidGeometry.
func NewIndexService(cfg *config.Config, edgeRepo *memory.EdgeRepository) (*IndexService, error) {
	bbox := geom.NewBBox(cfg.Grid.MinLng, cfg.Grid.MinLat, cfg.Grid.MaxLng, cfg.Grid.MaxLat)
	grid, err := geo.NewGridIndex[string](bbox, cfg.Grid.CellSizeDegrees, cfg.Grid.CellSizeDegrees)
	if err != nil {
		return nil, err
	}

	log.Printf("[INDEX] Grid ready: %dx%d cells over (%.4f, %.4f)-(%.4f, %.4f)",
		grid.NumCols(), grid.NumRows(), bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY)

	return &IndexService{
		grid:     grid,
		edgeRepo: edgeRepo,
	}, nil
}

// AddEdge stores the edge and indexes every segment of its polyline under
// the edge's ID. The repository write goes first: if the ID is taken, the
// grid is left untouched. Segments outside the grid region are clipped away
// by the index itself; an edge entirely outside the region is stored but
// never appears in any cell, and therefore in no query result.
func (s *IndexService) AddEdge(ctx context.Context, edge *entities.Edge) error {
	if err := s.edgeRepo.Create(ctx, edge); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, segment := range edge.Segments() {
		s.grid.AddLineSegment(edge.ID, segment)
	}

	log.Printf("[INDEX] Indexed edge %s (%d segments)", edge.ID, len(edge.Shape)-1)
	return nil
}

// Query returns the IDs of all edges recorded in any cell overlapping rect.
// The result is a coarse superset — see CandidateService for the refined
// search.
func (s *IndexService) Query(rect geom.BBox) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.grid.Query(rect)
}

// Shape returns the grid geometry.
func (s *IndexService) Shape() GridShape {
	return GridShape{
		BBox:       s.grid.BBox(),
		NumCols:    s.grid.NumCols(),
		NumRows:    s.grid.NumRows(),
		CellWidth:  s.grid.CellWidth(),
		CellHeight: s.grid.CellHeight(),
	}
}

// CellItems returns the edge IDs recorded in cell (i, j), converting an
// out-of-range address into an error rather than the panic the grid
// reserves for internal misuse.
func (s *IndexService) CellItems(i, j int) ([]string, error) {
	if i < 0 || i >= s.grid.NumCols() || j < 0 || j >= s.grid.NumRows() {
		return nil, fmt.Errorf("services: cell (%d, %d) out of range for %dx%d grid",
			i, j, s.grid.NumCols(), s.grid.NumRows())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Copy: the grid's slice is live storage and the caller may hold the
	// result past the next AddEdge.
	items := s.grid.ItemsInCell(i, j)
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}

// EdgeCount returns the number of edges stored.
func (s *IndexService) EdgeCount(ctx context.Context) int {
	return s.edgeRepo.Count(ctx)
}
