package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Webhook route (notifications from the video platform; authenticated by
	// signature, not session token)
	s.echo.POST("/webhooks/mux", s.handleMuxWebhook)

	// Merchant API (embedded admin surface, session-token authenticated)
	api := s.echo.Group("/api", s.requireSessionToken)

	api.POST("/streams", s.handleCreateStream)
	api.GET("/streams", s.handleListStreams)
	api.GET("/streams/:id", s.handleGetStream)
	api.PUT("/streams/:id", s.handleUpdateStream)
	api.POST("/streams/:id/schedule", s.handleScheduleStream)
	api.POST("/streams/:id/prepare", s.handlePrepareSession)
	api.POST("/streams/:id/start", s.handleStartStreaming)
	api.POST("/streams/:id/end", s.handleEndStreaming)
	api.GET("/streams/:id/status", s.handleStreamStatus)
	api.GET("/streams/:id/events", s.handleListEvents)

	api.GET("/streams/:id/products", s.handleListProducts)
	api.POST("/streams/:id/products", s.handleAddProduct)
	api.DELETE("/streams/:id/products/:productId", s.handleRemoveProduct)
	api.PUT("/streams/:id/products/order", s.handleReorderProducts)
	api.POST("/streams/:id/products/:productId/feature", s.handleFeatureProduct)

	api.GET("/streams/:id/clips", s.handleListClips)
	api.POST("/streams/:id/clips", s.handleCreateClip)
}
