package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-hub-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template so alumni ids never become label values.
// Requests whose path starts with one of skipPrefixes are not recorded.
func Metrics(metricsSvc *service.MetricsService, skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || hasPrefix(c.Request.URL.Path, skipPrefixes) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
