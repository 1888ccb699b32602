package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pilingqa",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pilingqa",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pilingqa",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Design extraction metrics
	DesignLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pilingqa",
		Subsystem: "design",
		Name:      "loads_total",
		Help:      "Design file loads by format and outcome",
	}, []string{"format", "outcome"})

	DesignPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pilingqa",
		Subsystem: "design",
		Name:      "points_total",
		Help:      "Design points extracted, by source tag",
	}, []string{"source"})

	ExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pilingqa",
		Subsystem: "extract",
		Name:      "duration_seconds",
		Help:      "Duration of design file extraction",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"format"})

	RecordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pilingqa",
		Subsystem: "extract",
		Name:      "records_skipped_total",
		Help:      "Point records or archive members dropped during extraction",
	}, []string{"format"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pilingqa",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	SessionHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pilingqa",
		Subsystem: "session",
		Name:      "hits_total",
		Help:      "Session state lookups that found a stored state",
	}, []string{"store"})

	SessionMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pilingqa",
		Subsystem: "session",
		Name:      "misses_total",
		Help:      "Session state lookups that started a fresh state",
	}, []string{"store"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
