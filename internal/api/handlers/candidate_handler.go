package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gridmatch/internal/domain/entities"
	"gridmatch/internal/services"
)

type CandidateHandler struct {
	candidateService *services.CandidateService
}

func NewCandidateHandler(candidateService *services.CandidateService) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
	}
}

type CandidateRequest struct {
	Location     LocationPayload `json:"location" binding:"required"`
	RadiusMeters float64         `json:"radius_meters"`
}

// LocationPayload mirrors entities.Location on the wire. Only the
// coordinate is mandatory; routing intent and address strings ride along
// untouched and come back attached to the response.
type LocationPayload struct {
	Lat      float64           `json:"lat" binding:"required"`
	Lng      float64           `json:"lng" binding:"required"`
	StopType entities.StopType `json:"stop_type"`

	Name       string   `json:"name"`
	Street     string   `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Heading    *float64 `json:"heading"`
}

// FindCandidates handles POST /candidates: given a location and a search
// radius, returns the road edges the location could be on, nearest first.
func (h *CandidateHandler) FindCandidates(c *gin.Context) {
	var req CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Location.StopType != "" &&
		req.Location.StopType != entities.StopTypeBreak &&
		req.Location.StopType != entities.StopTypeThrough {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stop_type must be break or through"})
		return
	}

	location := entities.Location{
		Latitude:   req.Location.Lat,
		Longitude:  req.Location.Lng,
		StopType:   req.Location.StopType,
		Name:       req.Location.Name,
		Street:     req.Location.Street,
		City:       req.Location.City,
		State:      req.Location.State,
		PostalCode: req.Location.PostalCode,
		Country:    req.Location.Country,
		Heading:    req.Location.Heading,
	}

	matched, err := h.candidateService.MatchLocation(c.Request.Context(), location, req.RadiusMeters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, matched)
}
