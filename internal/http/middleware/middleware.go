// Package middleware holds router-level middleware that depends on
// application services rather than only on gin.
package middleware

import (
	"strconv"
	"time"

	"intake_backend/platform/metrics"

	"github.com/gin-gonic/gin"
)

// RequestTimer records the latency of every routed request. Unmatched paths
// are reported under a single label to keep cardinality bounded.
func RequestTimer(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
