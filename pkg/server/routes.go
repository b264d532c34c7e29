package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/health"
	"github.com/dd0wney/virusnet/pkg/metrics"
)

// errorResponse is the JSON body of every non-2xx answer
type errorResponse struct {
	Error string `json:"error"`
}

// Routes builds the HTTP surface of a session
type Routes struct {
	Session *Session
	Health  *health.HealthChecker
	Metrics *metrics.Registry
}

// Handler returns the instrumented mux:
//
//	GET  /snapshot         current snapshot
//	GET  /history?since=N  snapshots with tick >= N
//	GET  /topology         network statistics
//	GET  /config           effective configuration as YAML
//	GET  /hosts/{id}       one host
//	GET  /stream           server-sent snapshot events
//	POST /reset?seed=N     restart with a new seed
//	GET  /health, /health/ready, /health/live
//	GET  /metrics          Prometheus exposition
func (rt Routes) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /snapshot", rt.handleSnapshot)
	mux.HandleFunc("GET /history", rt.handleHistory)
	mux.HandleFunc("GET /topology", rt.handleTopology)
	mux.HandleFunc("GET /config", rt.handleConfig)
	mux.HandleFunc("GET /hosts/{id}", rt.handleHost)
	mux.HandleFunc("GET /stream", rt.handleStream)
	mux.HandleFunc("POST /reset", rt.handleReset)

	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.HTTPHandler())
		mux.HandleFunc("GET /health/ready", rt.Health.ReadinessHandler())
		mux.HandleFunc("GET /health/live", rt.Health.LivenessHandler())
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(rt.Metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
		return Instrument(rt.Metrics, mux)
	}
	return mux
}

func (rt Routes) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.Session.Snapshot())
}

func (rt Routes) handleHistory(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid since %q", v))
			return
		}
		since = n
	}

	history := rt.Session.History()
	out := make([]epidemic.Snapshot, 0, len(history))
	for _, s := range history {
		if s.Tick >= since {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt Routes) handleTopology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.Session.Stats())
}

func (rt Routes) handleConfig(w http.ResponseWriter, r *http.Request) {
	data, err := rt.Session.Config().Marshal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

func (rt Routes) handleHost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid host id %q", r.PathValue("id")))
		return
	}

	view, err := rt.Session.Host(id)
	if errors.Is(err, epidemic.ErrUnknownHost) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt Routes) handleReset(w http.ResponseWriter, r *http.Request) {
	cfg := rt.Session.Config()
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid seed %q", v))
			return
		}
		cfg.Seed = seed
	} else {
		cfg.Seed++
	}

	if err := rt.Session.Reset(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.Session.Snapshot())
}

// handleStream writes one server-sent event per snapshot until the client
// goes away or a run finishes. A reset continues on the same stream with the
// new run's snapshots.
func (rt Routes) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	sub, err := rt.Session.Subscribe(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(s epidemic.Snapshot) bool {
		data, err := json.Marshal(s)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return !s.Finished
	}

	if !send(rt.Session.Snapshot()) {
		return
	}
	for s := range sub.Channel() {
		if !send(s) {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind Instrument
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Instrument records request counts, latency and in-flight requests. The
// path label is the matched route pattern, keeping label cardinality fixed.
func Instrument(reg *metrics.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reg.HTTPRequestsInFlight.Inc()
		defer reg.HTTPRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		reg.RecordHTTPRequest(r.Method, path, strconv.Itoa(rec.status), time.Since(start))
	})
}
