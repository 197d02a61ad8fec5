// Package memory provides in-memory repository implementations. They are
// the only storage this service has: the grid index is rebuilt from scratch
// on startup, so durable persistence buys nothing here.
package memory

import (
	"context"
	"errors"
	"sync"

	"gridmatch/internal/domain/entities"
)

// ErrEdgeExists is returned when creating an edge whose ID is already taken.
// Overwriting would orphan the existing grid entries for that ID.
var ErrEdgeExists = errors.New("memory: edge already exists")

// EdgeRepository stores edges by ID behind a read-write lock.
//
// Go Learning Note — sync.RWMutex:
// RWMutex provides read-write locking. Multiple goroutines can hold a read
// lock simultaneously (RLock), but a write lock (Lock) is exclusive. That
// fits this repository's life: a burst of writes while the graph loads,
// then almost exclusively reads while candidate queries run.
type EdgeRepository struct {
	mu    sync.RWMutex
	edges map[string]*entities.Edge
}

// NewEdgeRepository creates an empty edge repository.
func NewEdgeRepository() *EdgeRepository {
	return &EdgeRepository{
		edges: make(map[string]*entities.Edge),
	}
}

// Create stores a new edge. Returns ErrEdgeExists if the ID is taken.
func (r *EdgeRepository) Create(ctx context.Context, edge *entities.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.edges[edge.ID]; exists {
		return ErrEdgeExists
	}
	r.edges[edge.ID] = edge
	return nil
}

// GetByID returns an edge, or (nil, nil) when the ID is unknown.
func (r *EdgeRepository) GetByID(ctx context.Context, id string) (*entities.Edge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edge, exists := r.edges[id]
	if !exists {
		return nil, nil
	}
	return edge, nil
}

// GetByIDs returns the edges for the given IDs, skipping unknown ones. The
// candidate service feeds this the key set from a grid query, so unknown
// IDs are not an error — just absent.
func (r *EdgeRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Edge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edges := make([]*entities.Edge, 0, len(ids))
	for _, id := range ids {
		if edge, exists := r.edges[id]; exists {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// GetAll returns every stored edge in unspecified order.
func (r *EdgeRepository) GetAll(ctx context.Context) ([]*entities.Edge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edges := make([]*entities.Edge, 0, len(r.edges))
	for _, edge := range r.edges {
		edges = append(edges, edge)
	}
	return edges, nil
}

// Count returns the number of stored edges.
func (r *EdgeRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.edges)
}
