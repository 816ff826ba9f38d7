package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the locality service.
type Metrics struct {
	// Cache store metrics.
	CacheLookups *prometheus.CounterVec // labels: key, result={hit,miss,expired,corrupt}
	CacheWrites  *prometheus.CounterVec // labels: key, outcome={ok,error}

	// Detection metrics.
	Detections        *prometheus.CounterVec // labels: strategy={device,network}, outcome={success,error,miss}
	DetectionDuration prometheus.Histogram

	// Remote sync metrics.
	Syncs *prometheus.CounterVec // labels: direction={pull,push,write_through}, outcome={success,error,not_found}

	// Coordinator metrics.
	Operations     *prometheus.CounterVec // labels: op, outcome={ok,error,stale}
	ActiveSessions prometheus.Gauge

	// RPC metrics.
	RPCRequests *prometheus.CounterVec   // labels: procedure, code
	RPCDuration *prometheus.HistogramVec // labels: procedure
}

func newMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci_locality",
			Name:      "cache_lookups_total",
			Help:      "Cache store reads by key and result.",
		}, []string{"key", "result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci_locality",
			Name:      "cache_writes_total",
			Help:      "Cache store writes by key and outcome.",
		}, []string{"key", "outcome"}),
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci_locality",
			Name:      "detections_total",
			Help:      "Geolocation attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		DetectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loci_locality",
			Name:      "detection_duration_seconds",
			Help:      "Duration of a complete detection across all strategies.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci_locality",
			Name:      "remote_syncs_total",
			Help:      "Remote preference store calls by direction and outcome.",
		}, []string{"direction", "outcome"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci_locality",
			Name:      "coordinator_operations_total",
			Help:      "Coordinator mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loci_locality",
			Name:      "active_sessions",
			Help:      "Sessions currently held by the registry.",
		}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loci_locality",
			Name:      "rpc_requests_total",
			Help:      "Connect RPC requests by procedure and code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loci_locality",
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC handler duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"procedure"}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.CacheLookups,
			m.CacheWrites,
			m.Detections,
			m.DetectionDuration,
			m.Syncs,
			m.Operations,
			m.ActiveSessions,
			m.RPCRequests,
			m.RPCDuration,
		)
	}
	return m
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics(nil)
}
