package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncrio_publications_total",
			Help: "Publication attempts by platform and outcome",
		},
		[]string{"platform", "status"},
	)

	postsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncrio_posts_finished_total",
			Help: "Posts that left the publisher by final status",
		},
		[]string{"status"},
	)

	schedulerTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "syncrio_scheduler_tick_duration_seconds",
			Help:    "Time spent publishing the due posts of one scheduler tick",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	duePosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "syncrio_due_posts",
			Help: "Due posts found on the last scheduler tick",
		},
	)

	tokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncrio_token_refresh_total",
			Help: "Token refresh attempts by platform and outcome",
		},
		[]string{"platform", "result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syncrio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syncrio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func RecordPublication(platform, status string) {
	publicationsTotal.WithLabelValues(platform, status).Inc()
}

func RecordPostFinished(status string) {
	postsFinishedTotal.WithLabelValues(status).Inc()
}

func ObserveSchedulerTick(d time.Duration, due int) {
	schedulerTickDuration.Observe(d.Seconds())
	duePosts.Set(float64(due))
}

func RecordTokenRefresh(platform string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	tokenRefreshTotal.WithLabelValues(platform, result).Inc()
}

// Middleware counts requests by matched route so path parameters do not explode cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
