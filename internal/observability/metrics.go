// Package observability holds the prometheus collectors exported at /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "runlog"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	fitbitRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fitbit",
		Name:      "requests_total",
		Help:      "Outbound Fitbit API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	fitbitRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fitbit",
		Name:      "token_refreshes_total",
		Help:      "Fitbit access token refresh attempts by outcome.",
	}, []string{"outcome"})
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workouts",
		Name:      "created_total",
		Help:      "Workouts created, by source (manual or fitbit).",
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, fitbitRequests, fitbitRefreshes, workoutsCreated)
}

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// GinMiddleware records request counts and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordFitbitRequest counts one outbound Fitbit call.
func RecordFitbitRequest(operation string, err error) {
	fitbitRequests.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordTokenRefresh counts one refresh attempt.
func RecordTokenRefresh(err error) {
	fitbitRefreshes.WithLabelValues(outcome(err)).Inc()
}

// RecordWorkoutCreated counts a newly stored workout.
func RecordWorkoutCreated(imported bool) {
	source := "manual"
	if imported {
		source = "fitbit"
	}
	workoutsCreated.WithLabelValues(source).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
