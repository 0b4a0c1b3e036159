// internal/api/middleware.go
package api

import (
	"fmt"
	"strconv"
	"time"

	"betfunnels-copy/internal/common/auth"
	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/common/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	passwordHeader  = "x-app-password"
	requestIDKey    = "requestId"
)

// RequestContext tags every request with an ID and puts a logger carrying
// it into the request context.
func RequestContext(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		reqLog := log.WithFields(map[string]interface{}{"requestId": id})
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), reqLog))
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLog records one line and the HTTP metrics per request.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		logger.FromContext(c.Request.Context(), logger.NewNoOpLogger()).Info("request handled", map[string]interface{}{
			"method":     c.Request.Method,
			"route":      route,
			"status":     status,
			"durationMs": elapsed.Milliseconds(),
			"clientIp":   c.ClientIP(),
		})
	}
}

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		respondError(c, errors.NewInternalError(fmt.Errorf("panic: %v", recovered)))
	})
}

// CORS answers preflights with the configured origins and the headers the
// form sends, including x-app-password.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: cfg.AllowHeaders,
		MaxAge:       12 * time.Hour,
	}
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			break
		}
	}
	if !corsCfg.AllowAllOrigins {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(corsCfg)
}

// RequirePassword rejects requests whose x-app-password does not match the
// shared secret.
func RequirePassword(gate *auth.PasswordGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gate.Check(c.GetHeader(passwordHeader)); err != nil {
			if stdErr, ok := errors.As(err); ok && stdErr.Code == errors.ErrCodeAuth {
				metrics.PasswordFailures.Inc()
			}
			respondError(c, err)
			return
		}
		c.Next()
	}
}
