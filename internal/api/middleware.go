package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"releaf-service/config"
	"releaf-service/internal/auth"
	"releaf-service/internal/redisclient"
	"releaf-service/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principalID"

// authRequired validates the bearer token and stores the principal id in
// the request context. Token issuance lives in the auth service; this
// middleware is the boundary that turns a token into a principal.
func authRequired(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization token required",
				"error":   "unauthorized",
			})
			return
		}

		claims, err := tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
				"error":   "unauthorized",
			})
			return
		}

		c.Set(principalKey, claims.UserID)
		c.Next()
	}
}

// principalID returns the authenticated user id set by authRequired
func principalID(c *gin.Context) string {
	return c.GetString(principalKey)
}

// rateLimitMiddleware counts requests per client IP in Redis. Redis being
// down never blocks traffic; the limiter fails open.
func rateLimitMiddleware(redis *redisclient.Client, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redis == nil || cfg.Disabled {
			c.Next()
			return
		}

		allowed, err := redis.AllowRequest(c.Request.Context(), c.ClientIP(), cfg.MaxHits, cfg.Window)
		if err != nil {
			util.GetLogger().Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later",
				"error":   "rate_limited",
			})
			return
		}
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
