package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gridmatch/internal/domain/entities"
	"gridmatch/internal/geom"
	"gridmatch/internal/repository/memory"
	"gridmatch/internal/services"
	"gridmatch/pkg/utils"
)

type EdgeHandler struct {
	indexService *services.IndexService
	edgeRepo     *memory.EdgeRepository
}

func NewEdgeHandler(indexService *services.IndexService, edgeRepo *memory.EdgeRepository) *EdgeHandler {
	return &EdgeHandler{
		indexService: indexService,
		edgeRepo:     edgeRepo,
	}
}

// ShapePoint is one vertex of an edge polyline as it appears on the wire.
type ShapePoint struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

type CreateEdgeRequest struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Class    entities.RoadClass `json:"class"`
	SpeedKmh float64            `json:"speed_kmh"`
	Shape    []ShapePoint       `json:"shape" binding:"required,min=2"`
}

// CreateEdge handles POST /edges: stores the edge and indexes its geometry.
// The caller may supply its own edge ID (the usual case when mirroring an
// existing road graph); otherwise one is generated.
func (h *EdgeHandler) CreateEdge(c *gin.Context) {
	var req CreateEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := req.ID
	if id == "" {
		id = utils.GenerateID()
	}

	shape := make([]geom.Point, len(req.Shape))
	for i, p := range req.Shape {
		shape[i] = geom.Point{X: p.Lng, Y: p.Lat}
	}

	edge, err := entities.NewEdge(id, req.Name, shape)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	edge.Class = req.Class
	edge.SpeedKmh = req.SpeedKmh

	if err := h.indexService.AddEdge(c.Request.Context(), edge); err != nil {
		if errors.Is(err, memory.ErrEdgeExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         edge.ID,
		"name":       edge.Name,
		"num_points": len(edge.Shape),
		"length_deg": edge.Length(),
	})
}

// GetEdge handles GET /edges/:id.
func (h *EdgeHandler) GetEdge(c *gin.Context) {
	id := c.Param("id")

	edge, err := h.edgeRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if edge == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "edge not found"})
		return
	}

	c.JSON(http.StatusOK, edge)
}
