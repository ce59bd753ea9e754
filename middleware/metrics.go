package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
)

// MetricsMiddleware publishes per-route latency and outcome counters to CloudWatch.
func MetricsMiddleware(metricsClient *awspkg.MetricsClient, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metricsClient.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		dims := map[string]string{
			"Service": serviceName,
			"Route":   routeName(c.Request.Method, c.FullPath()),
		}
		counters := outcomeCounters(c.Writer.Status())

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = metricsClient.RecordLatency(ctx, awspkg.MetricHTTPLatency, elapsed, dims)
			for _, name := range counters {
				_ = metricsClient.RecordCount(ctx, name, dims)
			}
		}()
	}
}

// routeName keys metrics by route template, e.g. "PATCH /orders/:id".
func routeName(method, fullPath string) string {
	if fullPath == "" {
		fullPath = "unmatched"
	}
	return method + " " + fullPath
}

// outcomeCounters lists the counters one response contributes to. Payload
// rejections and throttling are tracked apart from other client errors.
func outcomeCounters(status int) []string {
	counters := []string{awspkg.MetricHTTPRequests}
	switch {
	case status == http.StatusUnprocessableEntity:
		counters = append(counters, awspkg.MetricValidationRejected)
	case status == http.StatusTooManyRequests:
		counters = append(counters, awspkg.MetricRateLimited)
	case status >= http.StatusInternalServerError:
		counters = append(counters, awspkg.MetricHTTP5xx)
	case status >= http.StatusBadRequest:
		counters = append(counters, awspkg.MetricHTTP4xx)
	}
	return counters
}
