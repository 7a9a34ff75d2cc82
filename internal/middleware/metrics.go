// internal/middleware/metrics.go
package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/SyedDaiam9101/cover-service/internal/metrics"
)

// UnaryMetricsInterceptor records the latency of each unary call by method and status code.
func UnaryMetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		// Non-status errors report as Unknown
		metrics.RecordGRPCLatency(info.FullMethod, status.Code(err).String(), time.Since(start).Seconds())

		return resp, err
	}
}

// GinMetrics records request latency by matched route and status code.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func GinMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPLatency(route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
