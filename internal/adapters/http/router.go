package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/hsdfat8/telbill/internal/logger"
)

// RouterOptions configures the optional routes
type RouterOptions struct {
	// MetricsPath serves Prometheus metrics when non-empty
	MetricsPath string

	// HealthCheck backs GET /health; nil always reports healthy
	HealthCheck func(ctx context.Context) error
}

// ginLogger returns a middleware that logs requests with the component logger
func ginLogger() gin.HandlerFunc {
	log := logger.New("gin-http", "")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		fields := []interface{}{
			"status", statusCode,
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"proto", c.Request.Proto,
			"latency_ms", latency.Milliseconds(),
		}

		if query != "" {
			fields = append(fields, "query", query)
		}

		if errorMessage != "" {
			fields = append(fields, "error", errorMessage)
		}

		switch {
		case statusCode >= 500:
			log.Errorw("HTTP request error", fields...)
		case statusCode >= 400:
			log.Warnw("HTTP request warning", fields...)
		default:
			log.Infow("HTTP request", fields...)
		}
	}
}

// ginRecovery returns a middleware that recovers from panics, logs the stack and answers 500
func ginRecovery() gin.HandlerFunc {
	log := logger.New("gin-recovery", "")

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorw("Panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"ip", c.ClientIP(),
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ProblemDetails{
					Type:   "about:blank",
					Title:  "Internal Server Error",
					Status: http.StatusInternalServerError,
				})
			}
		}()
		c.Next()
	}
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(billingService ports.BillingService, opts RouterOptions) *gin.Engine {
	// Set Gin to release mode to disable debug logging
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Recovery must be first
	router.Use(ginRecovery())
	router.Use(ginLogger())

	handler := NewHandler(billingService, opts.HealthCheck)

	api := router.Group("/api/v1")
	{
		accounts := api.Group("/accounts")
		accounts.POST("", handler.OpenAccount)
		accounts.GET("", handler.ListAccounts)
		accounts.GET("/:id", handler.GetAccount)
		accounts.POST("/:id/calls", handler.RecordCall)
		accounts.GET("/:id/calls", handler.ListCalls)
		accounts.POST("/:id/payments", handler.MakePayment)
		accounts.POST("/:id/settlements", handler.SettlePayment)
		accounts.GET("/:id/ledger", handler.GetLedger)

		api.POST("/plans/quote", handler.QuotePlan)

		devices := api.Group("/devices")
		devices.POST("", handler.RegisterDevice)
		devices.GET("/:id", handler.GetDevice)
		devices.POST("/:id/connect", handler.ConnectDevice)
		devices.POST("/:id/disconnect", handler.DisconnectDevice)

		api.GET("/phones", handler.ListPhones)
	}

	router.GET("/health", handler.HealthCheck)

	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(logger.MetricsHandler()))
	}

	return router
}
