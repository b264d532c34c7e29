// Package report contains the snapshot sinks a population publishes to:
// an in-memory history, a JSON-lines stream, a structured-log sink, a
// Prometheus sink and a pubsub broadcaster.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/metrics"
	"github.com/dd0wney/virusnet/pkg/pubsub"
)

// Sink receives one snapshot after seeding and after every tick
type Sink = epidemic.Observer

// Recorder keeps snapshots in memory. With a positive limit only the most
// recent limit snapshots are kept. Safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	history []epidemic.Snapshot
	limit   int
}

// NewRecorder creates a recorder. limit <= 0 keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Observe implements Sink
func (r *Recorder) Observe(s epidemic.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, s)
	if r.limit > 0 && len(r.history) > r.limit {
		r.history = append(r.history[:0], r.history[len(r.history)-r.limit:]...)
	}
}

// History returns a copy of the recorded snapshots, oldest first
func (r *Recorder) History() []epidemic.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]epidemic.Snapshot, len(r.history))
	copy(out, r.history)
	return out
}

// Last returns the most recent snapshot
func (r *Recorder) Last() (epidemic.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.history) == 0 {
		return epidemic.Snapshot{}, false
	}
	return r.history[len(r.history)-1], true
}

// Len returns the number of retained snapshots
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}

// Reset drops all snapshots
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
}

// JSONLines writes each snapshot as one JSON object per line. The first
// write error is kept and later snapshots are discarded.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

// NewJSONLines creates a JSON-lines sink writing to w
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

// Observe implements Sink
func (j *JSONLines) Observe(s epidemic.Snapshot) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return
	}
	if err := j.enc.Encode(s); err != nil {
		j.err = fmt.Errorf("failed to write snapshot for tick %d: %w", s.Tick, err)
	}
}

// Err returns the first write error
func (j *JSONLines) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// LoggerSink logs every snapshot at debug and the final one at info
type LoggerSink struct {
	logger logging.Logger
}

// NewLoggerSink creates a sink writing to logger
func NewLoggerSink(logger logging.Logger) *LoggerSink {
	return &LoggerSink{logger: logger.With(logging.Component("report"))}
}

// Observe implements Sink
func (l *LoggerSink) Observe(s epidemic.Snapshot) {
	fields := []logging.Field{
		logging.RunID(s.RunID),
		logging.Tick(s.Tick),
		logging.Int("susceptible", s.Counts.Susceptible),
		logging.Int("infected", s.Counts.Infected),
		logging.Int("resistant", s.Counts.Resistant),
		logging.Int("dead", s.Counts.Dead),
		logging.Ratio(float64(s.Ratio)),
	}
	if s.Finished {
		l.logger.Info("outbreak cleared", append(fields, logging.Int("peak_infected", s.Peak))...)
		return
	}
	l.logger.Debug("tick", append(fields,
		logging.Int("infections", s.Events.Infections),
		logging.Int("immunizations", s.Events.Immunizations),
		logging.Int("demotions", s.Events.Demotions),
		logging.Int("deaths", s.Events.Deaths),
		logging.Latency(s.Elapsed),
	)...)
}

// MetricsSink mirrors snapshots into a metrics registry
type MetricsSink struct {
	registry *metrics.Registry
}

// NewMetricsSink creates a sink updating registry
func NewMetricsSink(registry *metrics.Registry) *MetricsSink {
	return &MetricsSink{registry: registry}
}

// Observe implements Sink
func (m *MetricsSink) Observe(s epidemic.Snapshot) {
	c := s.Counts
	m.registry.UpdateHostCounts(c.Susceptible, c.Infected, c.Resistant, c.Dead)
	m.registry.SetRatio(float64(s.Ratio))
	m.registry.SetPeakInfected(s.Peak)

	switch {
	case s.Finished:
		m.registry.RecordRun(metrics.OutcomeCleared)
	case s.Tick > 0:
		e := s.Events
		m.registry.RecordTick(s.Elapsed, e.Infections, e.Immunizations, e.Demotions, e.Deaths)
	}
}

// Broadcaster publishes snapshots on a fixed pubsub topic, or on a topic
// named after the run id when the topic is empty.
type Broadcaster struct {
	ps    *pubsub.PubSub[epidemic.Snapshot]
	topic string
}

// NewBroadcaster creates a sink publishing to ps
func NewBroadcaster(ps *pubsub.PubSub[epidemic.Snapshot], topic string) *Broadcaster {
	return &Broadcaster{ps: ps, topic: topic}
}

// Observe implements Sink
func (b *Broadcaster) Observe(s epidemic.Snapshot) {
	topic := b.topic
	if topic == "" {
		topic = s.RunID
	}
	b.ps.Publish(topic, s)
}
