package handlers

import (
	"furnace_tempo/internal/logger"
	"furnace_tempo/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket fleet snapshot push on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerFurnaceRoutes(api)
	}
}

func (h *Handler) registerFurnaceRoutes(api *gin.RouterGroup) {
	furnaces := api.Group("/furnaces")
	{
		furnaces.GET("", h.getFleet)
		furnaces.GET("/:id", h.getSnapshot)
		furnaces.PATCH("/:id/config", h.updateConfig)
		furnaces.POST("/:id/start", h.startProcess)
		furnaces.POST("/:id/reset", h.resetFurnace)
		furnaces.POST("/:id/downtime/start", h.beginDowntime)
		furnaces.POST("/:id/downtime/end", h.endDowntime)
		furnaces.POST("/:id/alarm/silence", h.silenceAlarm)
		furnaces.GET("/:id/journal", h.getJournal)
		furnaces.DELETE("/:id/journal", h.clearJournal)
		furnaces.GET("/:id/stats", h.getStats)
	}
}
