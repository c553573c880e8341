package handlers

import (
	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{services: services, log: logger.OrNop(log), metrics: m}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// System endpoints
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Live state and control
	h.registerAPIRoutes(router)

	// Persisted history and forecast
	h.registerHistoryRoutes(router)

	// Snapshot stream over WebSocket (HTTP upgrade) on the same port
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
	api := r.Group("/api")
	{
		// Body example: {"value":1,"device":"sw01"}
		api.POST("/control", h.requireOperator, h.control)
		api.GET("/sensor-data", h.getSensorData)
		api.GET("/switch-status", h.getSwitchStatus)
		api.GET("/commands", h.getCommands)
	}
}

func (h *Handler) registerHistoryRoutes(r *gin.Engine) {
	r.GET("/get-sensor-history", h.getSensorHistory)
	r.GET("/get-latest-sensor-data", h.getLatestSensorData)
	r.GET("/get-available-dates", h.getAvailableDates)
	r.GET("/predict-power", h.predictPower)
	r.POST("/predict-power", h.predictPower)
}
