package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ModerationTransitions counts moderation state transitions by entity
	// kind and outcome.
	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_moderation_transitions_total",
		Help: "Total number of moderation transitions by kind and outcome",
	}, []string{"kind", "outcome"})

	// VotesCast counts vote operations by result (cast, retracted, switched).
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_votes_cast_total",
		Help: "Total number of vote operations by result",
	}, []string{"result"})

	// NotificationFailures counts best-effort notification dispatches that
	// failed and were suppressed.
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_notification_failures_total",
		Help: "Total number of suppressed notification dispatch failures",
	})
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for HTTP request metrics.
// The middleware registers collectors on the default registry, so it is
// created once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}
