package api

import (
	"github.com/gin-gonic/gin"

	"skihud/internal/api/handlers"
	"skihud/internal/api/middleware"
)

type Router struct {
	riderHandler    *handlers.RiderHandler
	presenceHandler *handlers.PresenceHandler
	adminHandler    *handlers.AdminHandler
}

func NewRouter(
	riderHandler *handlers.RiderHandler,
	presenceHandler *handlers.PresenceHandler,
	adminHandler *handlers.AdminHandler,
) *Router {
	return &Router{
		riderHandler:    riderHandler,
		presenceHandler: presenceHandler,
		adminHandler:    adminHandler,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.CORS())

	engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ski hud api online",
			"routes": []string{"/register", "/update", "/active", "/all", "/records"},
		})
	})
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	engine.POST("/register", r.riderHandler.Register)
	engine.POST("/update", r.riderHandler.Update)

	engine.GET("/active", r.presenceHandler.Active)
	engine.GET("/all", r.presenceHandler.All)
	engine.GET("/records", r.presenceHandler.Records)

	engine.GET("/reset", r.adminHandler.Reset)
}
