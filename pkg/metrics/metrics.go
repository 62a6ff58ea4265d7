// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

var (
	// writes counts successful record writes.
	// Labels: entity (author, genre, book, bookinstance), operation
	writes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "writes_total",
		Help:      "Total successful catalog record writes",
	}, []string{"entity", "operation"})

	// deleteBlocked counts deletes refused because other records still
	// reference the record.
	// Labels: entity
	deleteBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "delete_blocked_total",
		Help:      "Total deletes refused because of dependent records",
	}, []string{"entity"})

	// requestDuration measures handler latency.
	// Labels: method, route (the registered path), status
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func RecordWrite(entity, operation string) {
	writes.WithLabelValues(entity, operation).Inc()
}

func RecordDeleteBlocked(entity string) {
	deleteBlocked.WithLabelValues(entity).Inc()
}

// Middleware observes the latency of every routed request.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			status := c.Response().Status

			requestDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
