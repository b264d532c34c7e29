package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// UpdateHostCounts sets the per-state host gauges
func (r *Registry) UpdateHostCounts(susceptible, infected, resistant, dead int) {
	r.HostsByState.WithLabelValues("susceptible").Set(float64(susceptible))
	r.HostsByState.WithLabelValues("infected").Set(float64(infected))
	r.HostsByState.WithLabelValues("resistant").Set(float64(resistant))
	r.HostsByState.WithLabelValues("dead").Set(float64(dead))
}

// RecordTick records one advanced tick and the transitions it produced
func (r *Registry) RecordTick(duration time.Duration, infections, immunizations, demotions, deaths int) {
	r.TicksTotal.Inc()
	r.StepDuration.Observe(duration.Seconds())

	r.TransitionsTotal.WithLabelValues("infection").Add(float64(infections))
	r.TransitionsTotal.WithLabelValues("immunization").Add(float64(immunizations))
	r.TransitionsTotal.WithLabelValues("demotion").Add(float64(demotions))
	r.TransitionsTotal.WithLabelValues("death").Add(float64(deaths))
}

// SetRatio sets the resistant/susceptible gauge. +Inf is a valid value.
func (r *Registry) SetRatio(ratio float64) {
	r.ResistantSusceptibleRatio.Set(ratio)
}

// SetPeakInfected sets the peak infected gauge
func (r *Registry) SetPeakInfected(peak int) {
	r.PeakInfected.Set(float64(peak))
}

// RecordRun counts a finished run
func (r *Registry) RecordRun(outcome string) {
	r.RunsTotal.WithLabelValues(outcome).Inc()
}

// RecordReplicate counts an ensemble replicate and its duration
func (r *Registry) RecordReplicate(status string, duration time.Duration) {
	r.EnsembleReplicatesTotal.WithLabelValues(status).Inc()
	r.EnsembleReplicateSeconds.Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes uptime, goroutine and memory gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
