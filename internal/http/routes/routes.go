package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/phambaophuc/photo-transform/internal/http/handlers"
	"github.com/phambaophuc/photo-transform/internal/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	metrics      *middleware.Metrics
	config       *config.Config
	logger       *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	metrics *middleware.Metrics,
	config *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		metrics:      metrics,
		config:       config,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = r.config.Storage.MaxFileSize

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(r.metrics.Handler())
	router.Use(middleware.CORS(r.config.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		images := v1.Group("/images", middleware.RequireMultipart())
		{
			images.POST("/transform", r.imageHandler.TransformImage)
			images.POST("/dimensions", r.imageHandler.GetDimensions)
			images.POST("/batch/transform", r.imageHandler.BatchTransform)
		}

		v1.POST("/photos", middleware.RequireMultipart(), r.imageHandler.UploadPhoto)
		v1.GET("/photos/*key", r.imageHandler.ViewPhoto)
		v1.DELETE("/photos/*key", r.imageHandler.DeletePhoto)
		v1.GET("/dimensions/*key", r.imageHandler.GetPhotoDimensions)

		v1.POST("/jobs", r.imageHandler.CreateJob)
		v1.GET("/jobs/:id", r.imageHandler.GetJob)
	}

	if r.config.Storage.Backend == config.BackendLocal {
		router.Static("/uploads", r.config.Storage.UploadPath)
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.metrics.Registry(), promhttp.HandlerOpts{})))

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Photo transform service is running",
		})
	})

	return router
}
