package httpapi

import (
	"suspicious-account-graph/internal/infrastructure/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg *config.HTTPConfig, h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	}))

	router.GET("/health", h.Health)

	graph := router.Group("/graph")
	{
		graph.GET("/entities", h.QueryGraph)
		graph.GET("/entities/:id", h.AccountDetail)
		graph.GET("/stats", h.KindStats)
		graph.POST("/transfers", h.RecordTransfer)
	}

	router.POST("/sites/upsert", h.UpsertSite)

	dev := router.Group("/dev")
	{
		dev.POST("/synthetic", h.GenerateTopology)
		dev.DELETE("/synthetic", h.ClearTopology)
	}

	// Wildcard so evidence keys may contain slashes
	router.GET("/evidence/*key", h.EvidenceURL)

	return router
}
