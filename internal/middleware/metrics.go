package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// StatusTransitions counts applied workflow transitions by entity and target statut.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_status_transitions_total",
		Help: "Total number of applied workflow status transitions",
	}, []string{"entity", "statut"})

	// NotificationsCreated counts notification rows created by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_notifications_created_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})

	// EmailsAttempted counts transactional email attempts by template and outcome.
	EmailsAttempted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cfp_emails_attempted_total",
		Help: "Total number of transactional email attempts by template and outcome",
	}, []string{"template", "outcome"})

	// ActiveWebSockets is the gauge of currently open websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cfp_websocket_connections_active",
		Help: "Number of active WebSocket connections",
	})
)

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
