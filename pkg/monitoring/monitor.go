package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	CompletionsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_completions_recorded_total",
			Help: "Completions written through the API",
		},
		[]string{"status", "offline"},
	)

	LevelUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_level_ups_total",
			Help: "Recomputations that raised a habit level",
		},
		[]string{"target_type"},
	)

	Graduations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "habit_graduations_total",
		Help: "Duration habits that reached the 90 day streak",
	})

	SkipDayTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_skip_days_total",
			Help: "Skip day credits by lifecycle event",
		},
		[]string{"event"},
	)

	SweepRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_sweep_rows_total",
			Help: "Rows touched by the daily sweep",
		},
		[]string{"step"},
	)

	SweepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_sweep_failures_total",
			Help: "Failed daily sweep steps",
		},
		[]string{"step"},
	)

	SweepLastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "habit_sweep_last_run_timestamp_seconds",
		Help: "Unix time of the last daily sweep",
	})
)

var initOnce sync.Once

// Init registers the collectors with the default registry.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			CompletionsRecorded,
			LevelUps,
			Graduations,
			SkipDayTransitions,
			SweepRows,
			SweepFailures,
			SweepLastRun,
		)
	})
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
