package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"
	"gridmatch/internal/api"
	"gridmatch/internal/api/handlers"
	"gridmatch/internal/config"
	"gridmatch/internal/repository/memory"
	"gridmatch/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults apply when empty)")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		cfg = config.NewDefaultConfig()
	}

	// Initialize repository and services
	edgeRepo := memory.NewEdgeRepository()
	indexService, err := services.NewIndexService(cfg, edgeRepo)
	if err != nil {
		log.Fatalf("Failed to build grid index: %v", err)
	}
	candidateService := services.NewCandidateService(cfg, indexService, edgeRepo)

	// Initialize handlers
	edgeHandler := handlers.NewEdgeHandler(indexService, edgeRepo)
	candidateHandler := handlers.NewCandidateHandler(candidateService)
	gridHandler := handlers.NewGridHandler(indexService)

	// Setup router
	router := api.NewRouter(edgeHandler, candidateHandler, gridHandler)

	// Create Gin engine
	engine := gin.Default()
	router.Setup(engine)

	// Start server
	log.Printf("Starting gridmatch server on %s", cfg.Server.Port)
	if err := engine.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
