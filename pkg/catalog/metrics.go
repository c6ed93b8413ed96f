package catalog

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

const metricsNamespace = "zeroconf"

// Metrics exports catalog activity to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	events   *prometheus.CounterVec
	services prometheus.Gauge
	scans    prometheus.Counter
}

// NewMetrics creates the catalog collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "events_total",
			Help:      "Discovery events accepted by the catalog, by kind.",
		}, []string{"kind"}),
		services: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "services",
			Help:      "Services currently in the catalog.",
		}),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "scans_total",
			Help:      "Scans started.",
		}),
	}

	for _, c := range []prometheus.Collector{m.events, m.services, m.scans} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-populate every kind so the series exist before the first event.
	for _, kind := range discovery.AllEventKinds {
		m.events.WithLabelValues(kind.String())
	}
	return m, nil
}

func (m *Metrics) eventAccepted(kind discovery.EventKind, services int) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind.String()).Inc()
	m.services.Set(float64(services))
}

func (m *Metrics) scanStarted() {
	if m == nil {
		return
	}
	m.scans.Inc()
	m.services.Set(0)
}
