package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.HostsByState = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "virusnet_hosts",
			Help: "Number of hosts in each health state",
		},
		[]string{"state"},
	)

	r.ResistantSusceptibleRatio = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "virusnet_resistant_susceptible_ratio",
			Help: "Resistant hosts divided by susceptible hosts (+Inf with no susceptible hosts)",
		},
	)

	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "virusnet_ticks_total",
			Help: "Total number of simulation ticks advanced",
		},
	)

	r.StepDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "virusnet_step_duration_seconds",
			Help:    "Wall time spent advancing one tick",
			Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
		},
	)

	r.TransitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "virusnet_transitions_total",
			Help: "Host state transitions by kind",
		},
		[]string{"event"},
	)

	r.PeakInfected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "virusnet_peak_infected",
			Help: "Highest number of simultaneously infected hosts in the current run",
		},
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "virusnet_runs_total",
			Help: "Completed runs by outcome",
		},
		[]string{"outcome"},
	)
}

func (r *Registry) initEnsembleMetrics() {
	r.EnsembleReplicatesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "virusnet_ensemble_replicates_total",
			Help: "Ensemble replicates by status",
		},
		[]string{"status"},
	)

	r.EnsembleReplicateSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "virusnet_ensemble_replicate_duration_seconds",
			Help:    "Wall time of one ensemble replicate",
			Buckets: prometheus.DefBuckets,
		},
	)
}
