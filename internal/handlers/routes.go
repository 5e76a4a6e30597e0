package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	AgentHandler   *AgentHandler
	ModelID        string
	DeploymentMode string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "bedrock-agent-api",
			"model_id":        config.ModelID,
			"deployment_mode": config.DeploymentMode,
		})
	})

	// The frontend posts to /converse; /api/v1/converse is the versioned alias
	for _, path := range []string{"/converse", "/api/v1/converse"} {
		router.POST(path, config.AgentHandler.Converse)
		router.OPTIONS(path, config.AgentHandler.Converse)
	}
}
