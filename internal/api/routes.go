package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const stateStreamPath = "/state/stream"

// NewRouter builds the engine with the standard middleware and all routes.
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.New()        // Use gin.New() for more control over middleware
	router.Use(gin.Logger())   // Add structured logger middleware
	router.Use(gin.Recovery()) // Add panic recovery middleware
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{stateStreamPath})))

	RegisterRoutes(router, h)
	return router
}

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {

	// --- Generation ---
	projectGroup := router.Group("/project")
	{
		projectGroup.POST("/generate", h.Generate)            // Generate a component from a text prompt
		projectGroup.POST("/generate/image", h.GenerateImage) // Generate a component from a screenshot
	}

	// --- Published pipeline output ---
	router.GET("/state", h.GetState)
	router.GET(stateStreamPath, h.StreamState)
	router.GET("/preview", h.GetPreview)
	router.GET("/description", h.GetDescription)

	// --- Stored artifacts ---
	router.GET("/artifacts", h.ListArtifacts)
	router.GET("/artifacts/:id", h.GetArtifact)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
