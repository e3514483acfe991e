package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcoene/lzss/internal/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	// CORS middleware for public API access
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "X-Original-Size, X-Decompressed-Size, X-Passed-Through")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", HandleHealth)

	// Service information endpoint
	router.GET("/info", HandleInfo(cfg))
	router.GET("/", HandleInfo(cfg)) // Root endpoint shows info

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/decompress", HandleDecompress(cfg))
		v1.POST("/inspect", HandleInspect(cfg))
		v1.GET("/info", HandleInfo(cfg))
		v1.GET("/health", HandleHealth)
	}

	// Legacy routes for backward compatibility
	router.POST("/decompress", HandleDecompress(cfg))
}
