package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"career-assess/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	assessH *AssessmentHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assessments := r.Group("/assessments", JWTAuthMiddleware(jwtSvc))
	assessments.GET("", assessH.ListInstruments)
	assessments.GET("/results", assessH.ListResults)
	assessments.GET("/profile", assessH.GetProfile)
	assessments.POST("/profile/resync", assessH.ResyncProfile)

	instruments := assessments.Group("/instruments/:instrument")
	instruments.POST("/sessions", assessH.StartSession)
	instruments.GET("/result", assessH.GetResult)

	sessions := assessments.Group("/sessions/:id")
	sessions.GET("", assessH.GetSession)
	sessions.PUT("/answers", assessH.Answer)
	sessions.POST("/next", assessH.Next)
	sessions.POST("/previous", assessH.Previous)
	sessions.POST("/submit", assessH.Submit)
	sessions.POST("/persist", assessH.RetryPersist)
	sessions.DELETE("", assessH.Abandon)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
