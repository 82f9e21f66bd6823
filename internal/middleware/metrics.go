package middleware

import (
	"time"

	"github.com/Vroy4298/land-tax-system/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template.
// Unmatched paths share one label so scanners cannot blow up cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
