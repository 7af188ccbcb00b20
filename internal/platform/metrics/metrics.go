package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the admin console.
type Metrics struct {
	EventsRecorded     *prometheus.CounterVec
	DecodeFailures     *prometheus.CounterVec
	NarrativesRendered prometheus.Counter
	FallbackRenders    prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_console_audit_events_recorded_total",
			Help: "Audit events written, by action tag.",
		}, []string{"action"}),
		DecodeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_console_audit_decode_failures_total",
			Help: "Audit rows that failed to decode, by failure kind.",
		}, []string{"kind"}),
		NarrativesRendered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admin_console_audit_narratives_rendered_total",
			Help: "Narratives rendered for the audit log views.",
		}),
		FallbackRenders: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admin_console_audit_fallback_renders_total",
			Help: "Rows rendered through the raw-data fallback.",
		}),
	}
}

// ObservePublisherDropped exposes the fan-out publisher's drop counter as a
// gauge. Called once at startup when Kafka fan-out is configured.
func ObservePublisherDropped(dropped func() int64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "admin_console_audit_publisher_dropped_events",
		Help: "Events dropped by the fan-out publisher since start.",
	}, func() float64 { return float64(dropped()) })
}
