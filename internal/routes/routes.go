package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chrona/internal/handlers"
	"chrona/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	parser middleware.TokenParser,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	entryHandler *handlers.TimeEntryHandler,
	statsHandler *handlers.StatsHandler,
) *gin.Engine {

	// ---- public
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Time Tracker API is running"})
	})
	r.POST("/register", authHandler.Register)
	r.POST("/token", authHandler.Token)
	r.POST("/login", authHandler.Login)
	r.POST("/auth/google", authHandler.Google)

	// ---- optional actor; a bad token is still rejected
	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(parser))

	tasks := api.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/by-name", taskHandler.GetByName)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	entries := api.Group("/time-entries")
	{
		entries.POST("/", entryHandler.Create)
		entries.GET("/", entryHandler.GetAll)
		entries.GET("/:id", entryHandler.GetByID)
		entries.PUT("/:id", entryHandler.Update)
		entries.DELETE("/:id", entryHandler.Delete)
	}

	// ---- signed-in only
	stats := api.Group("/stats", middleware.RequireActor())
	{
		stats.GET("/daily", statsHandler.Daily)
		stats.GET("/weekly", statsHandler.Weekly)
		stats.GET("/weekly/pdf", statsHandler.WeeklyPDF)
	}
	api.GET("/users/me", middleware.RequireActor(), userHandler.Me)

	return r
}
