package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "licensemgr"

// Metrics holds the collectors for the license lifecycle. Each instance owns
// its own prometheus registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Created     prometheus.Counter
	Deleted     prometheus.Counter
	Validations *prometheus.CounterVec
	Removed     *prometheus.CounterVec
	Sweeps      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "licenses_created_total",
			Help:      "Licenses issued.",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "licenses_deleted_total",
			Help:      "Licenses revoked through the API.",
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_validations_total",
			Help:      "Validation requests by outcome.",
		}, []string{"outcome"}),
		Removed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "licenses_expired_removed_total",
			Help:      "Expired licenses removed, by the path that removed them.",
		}, []string{"via"}),
		Sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed expiry sweeps.",
		}),
	}

	m.registry.MustRegister(
		m.Created,
		m.Deleted,
		m.Validations,
		m.Removed,
		m.Sweeps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// TrackActive exposes the live registry size as a gauge.
func (m *Metrics) TrackActive(size func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "licenses_active",
		Help:      "Licenses currently held in memory, including expired ones not yet swept.",
	}, func() float64 { return float64(size()) }))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
