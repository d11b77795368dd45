package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the route handlers for registration.
type Handlers struct {
	Pipeline *PipelineHandler
	Publish  *PublishHandler
	Flags    *FlagsHandler
	// History is optional; its route is only registered when a publish
	// record store is configured.
	History *HistoryHandler
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, h Handlers, registry *prometheus.Registry) {
	router.POST("/parse", h.Pipeline.Parse)
	router.POST("/analyze", h.Pipeline.Analyze)
	router.POST("/summarize", h.Pipeline.Summarize)
	router.POST("/approve-summary", h.Pipeline.ApproveSummary)
	router.POST("/pipeline/back", h.Pipeline.Back)
	router.POST("/pipeline/reset", h.Pipeline.Reset)
	router.GET("/pipeline/state", h.Pipeline.State)

	router.GET("/platforms", h.Publish.Platforms)
	router.POST("/approve-queue", h.Publish.ApproveQueue)

	router.GET("/feature-flags", h.Flags.List)
	router.POST("/feature-flags", h.Flags.Update)

	if h.History != nil {
		router.GET("/publish-history", h.History.List)
	}

	if registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}
}
