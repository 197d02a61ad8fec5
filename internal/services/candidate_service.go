package services

import (
	"context"
	"log"
	"sort"

	"gridmatch/internal/config"
	"gridmatch/internal/domain/entities"
	"gridmatch/internal/geom"
	"gridmatch/internal/repository/memory"
	"gridmatch/pkg/utils"
)

// Candidate pairs an edge with its distance from the queried location. The
// map matcher downstream scores these against the GPS trace; here they're
// simply ranked nearest first.
type Candidate struct {
	Edge           *entities.Edge `json:"edge"`
	DistanceMeters float64        `json:"distance_meters"`
}

// MatchedLocation is a Location with its candidate edges attached — the
// shape the routing layer consumes: where the caller asked to go, and which
// parts of the road graph that could mean.
type MatchedLocation struct {
	Location   entities.Location `json:"location"`
	Candidates []Candidate       `json:"candidates"`
}

// CandidateService answers "which edges could this location be on?".
//
// Strategy: Coarse filter → Fine filter
//  1. Coarse: convert the search radius to degrees at the location's
//     latitude, build a rectangle around the coordinate, and ask the grid
//     for every edge recorded in the overlapping cells.
//  2. Fine: for each candidate edge, find the nearest point on its actual
//     polyline and measure the real (great-circle) distance. Drop edges
//     beyond the radius — the grid reports everything sharing a cell with
//     the rectangle, including geometry that misses it.
//  3. Sort by distance, nearest first, and cap the list.
//
// The two-phase shape is what makes the index worthwhile: phase 1 touches a
// handful of cells instead of the whole graph, and phase 2 only pays exact
// geometry on the survivors.
type CandidateService struct {
	config       *config.Config
	indexService *IndexService
	edgeRepo     *memory.EdgeRepository
}

// NewCandidateService creates a candidate search over the given index.
func NewCandidateService(cfg *config.Config, indexService *IndexService, edgeRepo *memory.EdgeRepository) *CandidateService {
	return &CandidateService{
		config:       cfg,
		indexService: indexService,
		edgeRepo:     edgeRepo,
	}
}

// FindCandidates returns the edges within radiusMeters of the location,
// nearest first. A non-positive radius selects the configured default; an
// oversized radius is clamped to the configured maximum.
func (s *CandidateService) FindCandidates(ctx context.Context, location entities.Location, radiusMeters float64) ([]Candidate, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.config.Search.DefaultRadiusMeters
	}
	if radiusMeters > s.config.Search.MaxRadiusMeters {
		radiusMeters = s.config.Search.MaxRadiusMeters
	}

	// Coarse: rectangle of the radius in degrees, centred on the location.
	center := location.Point()
	dLat := utils.MetersToDegreesLat(radiusMeters)
	dLng := utils.MetersToDegreesLng(radiusMeters, location.Latitude)
	rect := geom.BBox{
		MinX: center.X - dLng,
		MinY: center.Y - dLat,
		MaxX: center.X + dLng,
		MaxY: center.Y + dLat,
	}

	ids := s.indexService.Query(rect)
	if len(ids) == 0 {
		return nil, nil
	}

	idList := make([]string, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	edges, err := s.edgeRepo.GetByIDs(ctx, idList)
	if err != nil {
		return nil, err
	}

	// Fine: exact distance to each surviving edge's polyline.
	var candidates []Candidate
	for _, edge := range edges {
		nearest := edge.NearestPoint(center)
		meters := utils.HaversineDistance(location.Latitude, location.Longitude, nearest.Y, nearest.X) * 1000
		if meters <= radiusMeters {
			candidates = append(candidates, Candidate{Edge: edge, DistanceMeters: meters})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})

	if len(candidates) > s.config.Search.MaxCandidates {
		candidates = candidates[:s.config.Search.MaxCandidates]
	}

	log.Printf("[SEARCH] (%.5f, %.5f) r=%.0fm: %d in cells, %d within radius",
		location.Latitude, location.Longitude, radiusMeters, len(ids), len(candidates))

	return candidates, nil
}

// MatchLocation runs FindCandidates and attaches the result to the location
// record itself.
func (s *CandidateService) MatchLocation(ctx context.Context, location entities.Location, radiusMeters float64) (*MatchedLocation, error) {
	if location.StopType == "" {
		location.StopType = entities.StopTypeBreak
	}

	candidates, err := s.FindCandidates(ctx, location, radiusMeters)
	if err != nil {
		return nil, err
	}

	return &MatchedLocation{
		Location:   location,
		Candidates: candidates,
	}, nil
}
