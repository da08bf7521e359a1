package router

import (
	"github.com/cuongbtq/jobboard/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(allowedOrigins))

	health := handler.NewHealthHandler(deps)
	r.GET("/health", health.Health)

	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)

	api := r.Group("/api")
	{
		jobs := api.Group("/jobs")
		{
			// GET /api/jobs - List jobs matching category/location/experience
			jobs.GET("", jobHandler.ListJobs)

			// GET /api/jobs/:id - Get job details
			jobs.GET("/:id", jobHandler.GetJob)
		}

		// GET /api/filters - Filter options offered to clients
		api.GET("/filters", jobHandler.Filters)

		// POST /api/apply - Submit an application
		api.POST("/apply", applicationHandler.Apply)
	}

	return r
}
