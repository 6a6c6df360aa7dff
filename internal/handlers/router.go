// Package handlers contains the HTTP handlers and routing.
package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(handler *CheckoutHandler, ginMode, serviceAPIKey string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware(logger))

	// Health check (public)
	router.GET("/health", handler.Health)

	// API v1 routes (requires Bearer auth)
	v1 := router.Group("/api/v1")
	v1.Use(ServiceAuthMiddleware(serviceAPIKey))
	{
		checkout := v1.Group("/checkout")
		{
			checkout.POST("/redirect", handler.Redirect)
			checkout.POST("/return", handler.Return)
			checkout.POST("/settle", handler.Settle)
			checkout.POST("/cancel", handler.Cancel)
		}

		v1.POST("/accounts/lookup", handler.LookupAccount)
		v1.GET("/transactions", handler.ListTransactions)
		v1.POST("/transactions/:pay_key/refund", handler.Refund)
		v1.GET("/settlements/:pay_key", handler.GetSettlement)
	}

	return router
}
