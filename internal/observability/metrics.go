package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the ingestion and recommendation
// paths. A single instance is injected into the services and the consumer so
// both ingress paths increment the same registry without shared globals.
type Metrics struct {
	UpdatesReceived  prometheus.Counter
	UpdatesPersisted prometheus.Counter
	UpdatesPublished prometheus.Counter
	DroppedInvalid   prometheus.Counter
	DBErrors         prometheus.Counter
	NATSErrors       prometheus.Counter
	StaleFiltered    prometheus.Counter

	// Consumer outcomes by disposition: ack, nak, term.
	ConsumerMessages *prometheus.CounterVec
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpdatesReceived,
		m.UpdatesPersisted,
		m.UpdatesPublished,
		m.DroppedInvalid,
		m.DBErrors,
		m.NATSErrors,
		m.StaleFiltered,
		m.ConsumerMessages,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpdatesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "updates_received_total",
			Help:      "Capacity reports accepted for processing.",
		}),
		UpdatesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "updates_persisted_total",
			Help:      "Capacity reports durably committed to the database.",
		}),
		UpdatesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "updates_published_total",
			Help:      "Capacity-updated events published to the stream.",
		}),
		DroppedInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "dropped_invalid_total",
			Help:      "Reports rejected before any write for failing validation.",
		}),
		DBErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "db_errors_total",
			Help:      "Transactions aborted by a storage failure.",
		}),
		NATSErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "nats_errors_total",
			Help:      "Event publish attempts that failed after commit.",
		}),
		StaleFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "stale_filtered_total",
			Help:      "Hospitals excluded from recommendations for staleness.",
		}),
		ConsumerMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital_capacity",
			Name:      "consumer_messages_total",
			Help:      "Stream messages processed by disposition.",
		}, []string{"disposition"}),
	}
}
