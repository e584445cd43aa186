package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"localmart/internal/auth"
	"localmart/internal/util"

	"github.com/gin-gonic/gin"
)

const claimsKey = "authClaims"

// authMiddleware verifies the bearer token and stores its claims on the
// request context. Missing or invalid tokens are rejected before the
// handler runs.
func authMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "no token, authorization denied",
			})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token is not valid",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// mustClaims returns the verified claims set by authMiddleware.
func mustClaims(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsKey).(*auth.Claims)
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
