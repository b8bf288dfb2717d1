package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lilypad"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	rpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, cacheRequestsTotal, rpcRequestsTotal)
}

// Middleware records HTTP request duration and count, labelled by route pattern.
// Errors are handed to the echo error handler here so the recorded status is the one sent.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}

			path := ctx.Path()
			if path == "" || (ctx.Response().Status == http.StatusNotFound && !isRoute(ctx.Echo(), path)) {
				path = "unknown"
			}
			labels := []string{ctx.Request().Method, path, strconv.Itoa(ctx.Response().Status)}
			httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(labels...).Inc()
			return nil
		}
	}
}

// isRoute reports whether path is a registered route pattern. Unmatched requests
// carry the raw URL path, which must not become a label value.
func isRoute(e *echo.Echo, path string) bool {
	for _, r := range e.Routes() {
		if r.Path == path {
			return true
		}
	}
	return false
}

// Handler exposes the registered metrics.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

func CacheHit()   { cacheRequestsTotal.WithLabelValues("hit").Inc() }
func CacheMiss()  { cacheRequestsTotal.WithLabelValues("miss").Inc() }
func CacheError() { cacheRequestsTotal.WithLabelValues("error").Inc() }

func RPCCall(method string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcRequestsTotal.WithLabelValues(method, outcome).Inc()
}
