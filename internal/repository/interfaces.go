package repository

import (
	"context"

	"gridmatch/internal/domain/entities"
)

// EdgeRepository stores road graph edges by ID. It is append-only: the
// spatial index cannot un-index a segment, so allowing edge deletion here
// would let the two stores drift apart.
type EdgeRepository interface {
	Create(ctx context.Context, edge *entities.Edge) error
	GetByID(ctx context.Context, id string) (*entities.Edge, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Edge, error)
	GetAll(ctx context.Context) ([]*entities.Edge, error)
	Count(ctx context.Context) int
}
