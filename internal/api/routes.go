package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {
	// --- Project Lifecycle ---
	projectGroup := router.Group("/project")
	{
		projectGroup.POST("/generate", h.GenerateProject)              // Generate a project and return its files
		projectGroup.POST("/generate/stream", h.GenerateProjectStream) // Same, streaming fragments as server-sent events
		projectGroup.POST("/enhance", h.EnhanceProject)                // Add automated tests to generated code
		projectGroup.POST("/download", h.DownloadProject)              // Zip a file list
	}

	router.POST("/features/suggest", h.SuggestFeatures)
	router.GET("/catalog", h.GetCatalog)

	// --- Simple Health Check ---
	router.GET("/health", h.Health)
}
