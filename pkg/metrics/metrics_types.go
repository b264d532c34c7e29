package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Simulation Metrics
	HostsByState              *prometheus.GaugeVec
	ResistantSusceptibleRatio prometheus.Gauge
	TicksTotal                prometheus.Counter
	StepDuration              prometheus.Histogram
	TransitionsTotal          *prometheus.CounterVec
	PeakInfected              prometheus.Gauge
	RunsTotal                 *prometheus.CounterVec

	// Ensemble Metrics
	EnsembleReplicatesTotal  *prometheus.CounterVec
	EnsembleReplicateSeconds prometheus.Histogram

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeCleared   = "cleared"
	OutcomeMaxSteps  = "max_steps"
	OutcomeCancelled = "cancelled"
)

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initSimulationMetrics()
	r.initEnsembleMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
