package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gridmatch/internal/services"
)

// GridHandler exposes the grid's internals for debugging: its geometry and
// the raw contents of individual cells.
type GridHandler struct {
	indexService *services.IndexService
}

func NewGridHandler(indexService *services.IndexService) *GridHandler {
	return &GridHandler{
		indexService: indexService,
	}
}

// GetShape handles GET /debug/grid.
func (h *GridHandler) GetShape(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"grid":       h.indexService.Shape(),
		"edge_count": h.indexService.EdgeCount(c.Request.Context()),
	})
}

// GetCell handles GET /debug/cell/:i/:j — the edge IDs recorded in one
// cell, duplicates included, in insertion order.
func (h *GridHandler) GetCell(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("i"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "i must be an integer"})
		return
	}
	j, err := strconv.Atoi(c.Param("j"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "j must be an integer"})
		return
	}

	items, err := h.indexService.CellItems(i, j)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"i":     i,
		"j":     j,
		"items": items,
	})
}
