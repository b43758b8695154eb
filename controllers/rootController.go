package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one backing dependency.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

func rootHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
		if _, err := c.Writer.Write([]byte("TeleClinic booking API")); err != nil {
			log.Warn("failed to write root response", zap.Error(err))
		}
	}
}

func healthHandler(log *zap.Logger, checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		result := gin.H{}
		status := http.StatusOK
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				log.Error("health check failed", zap.String("dependency", check.Name), zap.Error(err))
				result[check.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			result[check.Name] = "up"
		}
		c.JSON(status, result)
	}
}

// SetupRootRoute registers / and /healthz.
func SetupRootRoute(router *gin.Engine, log *zap.Logger, checks ...HealthCheck) {
	router.GET("/", rootHandler(log))
	router.GET("/healthz", healthHandler(log, checks))
}
