package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"balance_chart/internal/config"
	"balance_chart/internal/pkg/utils"
)

const swaggerSpecRoute = "/docs/swagger.yaml"

// SetupRouter builds the gin engine of the widget API.
func SetupRouter(h *SessionHandler, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(utils.ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", h.GetNetworksHandler)
		v1.POST("/sessions", h.CreateSessionHandler)
		v1.GET("/sessions/:id/view", h.GetViewHandler)
		v1.PUT("/sessions/:id/selection", h.UpdateSelectionHandler)
		v1.DELETE("/sessions/:id", h.DeleteSessionHandler)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		router.StaticFile(swaggerSpecRoute, cfg.Swagger.SpecFile)
		router.GET(cfg.Swagger.Path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(swaggerSpecRoute)))
		logger.Info("Swagger UI enabled", zap.String("path", cfg.Swagger.Path+"/index.html"))
	}

	return router
}
