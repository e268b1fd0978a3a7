package handlers

import (
	"audio_bridge/internal/logger"
	"audio_bridge/internal/service"

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

	router.GET("/health", h.health)

	// Command bridge; the PHP path is what existing control pages call.
	h.registerBridgeRoutes(router)

	h.registerAPIRoutes(router)

	// Peak monitor push (HTTP upgrade), same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerBridgeRoutes(r *gin.Engine) {
	for _, path := range []string{"/php/main.php", "/bridge"} {
		r.GET(path, h.bridge)
		r.POST(path, h.bridge)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerMonitorRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerMonitorRoutes(api *gin.RouterGroup) {
	monitor := api.Group("/monitor")
	{
		monitor.GET("", h.getMonitor)
		monitor.POST("/clear", h.clearPeaks)
		monitor.DELETE("/watermark", h.showAllPeaks)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
