package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wordflow/internal/server/handler"
	"wordflow/internal/server/middleware"
)

// AnalysisHandler defines the interface for the text and document handlers.
type AnalysisHandler interface {
	HandleText(c *gin.Context)
	HandleSubtitle(c *gin.Context)
	HandleEPUB(c *gin.Context)
	HandlePDF(c *gin.Context)
	HandleImage(c *gin.Context)
	HandleStatistics(c *gin.Context)
	HandleTopWords(c *gin.Context)
	HandleFrequentWords(c *gin.Context)
}

// BatchHandler defines the interface for the batch image handlers.
type BatchHandler interface {
	HandleSubmit(c *gin.Context)
	HandleStatus(c *gin.Context)
	HandleResults(c *gin.Context)
}

// Options configures the engine.
type Options struct {
	APIKey string
	Debug  bool
	Logger *zap.Logger
	// ImageHealth serves GET /api/v1/image/health when set.
	ImageHealth gin.HandlerFunc
}

// New wires up handlers to the Gin engine. A nil batch handler leaves the
// batch routes unregistered.
func New(opts Options, analysis AnalysisHandler, batch BatchHandler) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.WithRecovery(logger, opts.Debug), middleware.WithLogger(logger))

	// Health check endpoint (no API key)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.HandleHealth)
	if opts.ImageHealth != nil {
		v1.GET("/image/health", opts.ImageHealth)
	}

	api := v1.Group("")
	api.Use(middleware.WithAPIKey(opts.APIKey))
	{
		api.POST("/text", analysis.HandleText)
		api.POST("/subtitle", analysis.HandleSubtitle)
		api.POST("/epub", analysis.HandleEPUB)
		api.POST("/pdf", analysis.HandlePDF)
		api.POST("/image", analysis.HandleImage)

		api.POST("/statistics", analysis.HandleStatistics)
		api.POST("/words/top", analysis.HandleTopWords)
		api.POST("/words/frequent", analysis.HandleFrequentWords)

		if batch != nil {
			api.POST("/image/batch", batch.HandleSubmit)
			api.GET("/image/batch/:id", batch.HandleStatus)
			api.GET("/image/batch/:id/results", batch.HandleResults)
		}
	}

	return r
}
