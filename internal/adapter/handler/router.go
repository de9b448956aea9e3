package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/harulab/interp-practice/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg          *config.Config
	videoHandler *VideoController
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, videoHandler *VideoController) *Router {
	return &Router{
		cfg:          cfg,
		videoHandler: videoHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupVideoRoutes(v1)
}

// setupVideoRoutes configures video processing routes
func (rt *Router) setupVideoRoutes(g *echo.Group) {
	videoGroup := g.Group("/videos")

	if rt.videoHandler != nil {
		videoGroup.POST("/process", rt.videoHandler.ProcessVideo)
		videoGroup.GET("/status/:id", rt.videoHandler.GetStatus)
		videoGroup.GET("/result/:id", rt.videoHandler.GetResult)
		videoGroup.POST("/captions/check", rt.videoHandler.CheckCaptions)
		videoGroup.GET("/history", rt.videoHandler.History)
	} else {
		videoGroup.POST("/process", rt.notImplemented)
		videoGroup.GET("/status/:id", rt.notImplemented)
		videoGroup.GET("/result/:id", rt.notImplemented)
		videoGroup.POST("/captions/check", rt.notImplemented)
		videoGroup.GET("/history", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
