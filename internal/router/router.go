package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tikaparse/docs"
	"tikaparse/internal/handler"
	"tikaparse/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger zerolog.Logger,
	allowedOrigins []string,
	tokens middleware.TokenValidator,
	parseH *handler.ParseHandler,
	docH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(tokens))

	v1.POST("/parse", parseH.Parse)

	docs := v1.Group("/documents")
	docs.POST("", docH.Upload)
	docs.GET("", docH.List)
	docs.GET("/export", docH.Export)
	docs.GET("/:id", docH.GetByID)
	docs.GET("/:id/content", docH.Content)
	docs.GET("/:id/download", docH.Download)
	docs.POST("/:id/reparse", docH.Reparse)
	docs.DELETE("/:id", docH.Delete)

	return r
}
