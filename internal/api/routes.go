package api

import (
	"github.com/gin-gonic/gin"
	"gridmatch/internal/api/handlers"
	"gridmatch/internal/api/middleware"
)

type Router struct {
	edgeHandler      *handlers.EdgeHandler
	candidateHandler *handlers.CandidateHandler
	gridHandler      *handlers.GridHandler
}

func NewRouter(
	edgeHandler *handlers.EdgeHandler,
	candidateHandler *handlers.CandidateHandler,
	gridHandler *handlers.GridHandler,
) *Router {
	return &Router{
		edgeHandler:      edgeHandler,
		candidateHandler: candidateHandler,
		gridHandler:      gridHandler,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Protected routes
	api := engine.Group("/")
	api.Use(middleware.MockAuth())
	{
		// Ingest endpoints: loading edges mutates the index.
		ingestRoutes := api.Group("/edges")
		ingestRoutes.Use(middleware.RequireIngest())
		{
			ingestRoutes.POST("", r.edgeHandler.CreateEdge)
		}

		// Query endpoints (any authenticated client)
		api.GET("/edges/:id", r.edgeHandler.GetEdge)
		api.POST("/candidates", r.candidateHandler.FindCandidates)
	}

	// Debug endpoints (no auth for testing)
	debug := engine.Group("/debug")
	{
		debug.GET("/grid", r.gridHandler.GetShape)
		debug.GET("/cell/:i/:j", r.gridHandler.GetCell)
	}
}
