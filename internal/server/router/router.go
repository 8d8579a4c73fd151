package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/groow/smoke/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. The webhook
// routes are only mounted when webhook is non-nil.
func New(runs *handlers.RunsHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/suites", runs.ListSuites)
	r.GET("/runs", runs.ListRuns)
	r.GET("/runs/latest", runs.LatestRun)
	r.GET("/runs/status", runs.RunStatus)
	r.GET("/runs/trend", runs.Trend)
	r.POST("/runs", runs.StartRun)

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("webhook", webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
