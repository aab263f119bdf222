package api

import (
	"context"
	"fmt"
	"time"

	"stockbacktest/internal/app"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	BacktestHandler app.BacktestHandler
	PriceStore      repository.PriceStoreRepository
}

// InitializeRouterEngine builds the router shared by the standalone
// server and the lambda adapter.
func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "welcome to the backtest service"})
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(cors.Default())
	apiGroup.GET("/get_stocks", m.getStocks)
	apiGroup.POST("/run_backtest", m.runBacktest)
	apiGroup.POST("/run_scan", m.runScan)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Warnf("request failed: %s", err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// logRequestMiddleware attaches a request-scoped logger with a request
// id, and logs every request with its status and latency.
func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.NewString()
	log := logger.New().With("requestID", requestID, "route", c.Request.URL.Path)

	ctx := context.WithValue(c.Request.Context(), logger.ContextKey, log)
	c.Request = c.Request.WithContext(ctx)

	start := time.Now().UTC()
	c.Next()

	log.Infow("handled request",
		"method", c.Request.Method,
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
