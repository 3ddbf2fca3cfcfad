package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/alphabatem/common/context"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "ascent_api"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Progression Metrics
var (
	lessonSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lesson_submissions_total",
			Help: "Total lesson submissions by result",
		},
		[]string{"result"},
	)

	badgesAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total badges awarded by scope",
		},
		[]string{"scope"},
	)

	levelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total user level ups",
		},
	)

	xpAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Total XP awarded across all users",
		},
	)
)

// Package-level recorders so engine services never need a handle on the
// monitoring service. Safe before Start; samples just accumulate until
// the registry is scraped.
func recordSubmission(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	lessonSubmissionsTotal.WithLabelValues(result).Inc()
}

func recordBadgeAwarded(scope string) {
	badgesAwardedTotal.WithLabelValues(scope).Inc()
}

func recordLevelUp() {
	levelUpsTotal.Inc()
}

func recordXPAwarded(xp int) {
	if xp > 0 {
		xpAwardedTotal.Add(float64(xp))
	}
}

type MonitoringService struct {
	context.DefaultService

	port     int
	register *prometheus.Registry

	server *fiber.App
}

func (svc *MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Start() error {
	portStr := os.Getenv("PROMETHEUS_PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reg.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		lessonSubmissionsTotal,
		badgesAwardedTotal,
		levelUpsTotal,
		xpAwardedTotal,
	)

	svc.register = reg

	config := fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	}

	svc.server = fiber.New(config)
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

// RecordRequest records HTTP request metrics
func (svc *MonitoringService) RecordRequest(method, endpoint, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())
}

// MonitoringMiddleware records request counters for every handled route.
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		err := c.Next()

		endpoint := c.Route().Path
		duration := time.Since(start)
		status := strconv.Itoa(c.Response().StatusCode())

		monitoringSvc.RecordRequest(method, endpoint, status, duration)

		return err
	}
}
