package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/health"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/pubsub"
	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/report"
	"github.com/dd0wney/virusnet/pkg/topology"
)

// StreamTopic is the pubsub topic carrying every snapshot of a session
const StreamTopic = "session"

// SessionOptions configures a Session
type SessionOptions struct {
	History  int // snapshots kept for /history, <= 0 keeps all
	Restart  bool
	Provider topology.Provider
	Sinks    []report.Sink
	Logger   logging.Logger
}

// Session owns the population served over HTTP and serializes every access
// to it. When Restart is set a cleared run is replaced by a fresh one with
// the next seed.
type Session struct {
	mu       sync.RWMutex
	cfg      config.Config
	pop      *epidemic.Population
	stats    topology.Statistics
	lastStep time.Time

	recorder *report.Recorder
	broker   *pubsub.PubSub[epidemic.Snapshot]
	opts     SessionOptions
	logger   logging.Logger
}

// NewSession seeds the first population from cfg
func NewSession(cfg config.Config, opts SessionOptions) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Provider == nil {
		opts.Provider = topology.ErdosRenyi{}
	}
	s := &Session{
		recorder: report.NewRecorder(opts.History),
		broker:   pubsub.New[epidemic.Snapshot](0),
		opts:     opts,
		logger:   opts.Logger.With(logging.Component("session")),
	}
	if err := s.Reset(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset replaces the running population with a new one built from cfg.
// The history is cleared.
func (s *Session) Reset(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	observers := append([]epidemic.Observer{s.recorder, report.NewBroadcaster(s.broker, StreamTopic)}, s.opts.Sinks...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recorder.Reset()
	pop, err := epidemic.New(cfg, randvar.New(cfg.Seed),
		epidemic.WithProvider(s.opts.Provider),
		epidemic.WithLogger(s.opts.Logger),
		epidemic.WithObserver(observers...),
	)
	if err != nil {
		return err
	}

	s.cfg = pop.Config()
	s.pop = pop
	s.stats = topology.Stats(pop.Topology())
	s.lastStep = time.Time{}
	s.logger.Info("session reset", logging.RunID(pop.ID()), logging.Seed(cfg.Seed))
	return nil
}

// Step advances the population one tick
func (s *Session) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	advanced := s.pop.Step()
	if advanced {
		s.lastStep = time.Now()
	}
	return advanced
}

// Run ticks the population every interval until ctx is done. With Restart
// set, a finished run is replaced by a new one seeded with seed+1.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}

		if s.Step() || !s.opts.Restart {
			continue
		}

		cfg := s.Config()
		cfg.Seed++
		if err := s.Reset(cfg); err != nil {
			return err
		}
	}
}

// Config returns the configuration of the current run
func (s *Session) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Snapshot returns the current report
func (s *Session) Snapshot() epidemic.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pop.Snapshot()
}

// History returns the recorded snapshots of the current run
func (s *Session) History() []epidemic.Snapshot {
	return s.recorder.History()
}

// Stats returns the network statistics of the current run
func (s *Session) Stats() topology.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// HostView is the JSON shape of one host
type HostView struct {
	ID        int                  `json:"id"`
	State     epidemic.HealthState `json:"state"`
	Age       int                  `json:"age"`
	Port      int                  `json:"port"`
	Occupancy float64              `json:"grid_occupancy"`
	Severity  epidemic.Severity    `json:"severity"`
	Strain    int                  `json:"strain,omitempty"`
	Neighbors []int                `json:"neighbors"`
}

// Host returns a copy of one host's observable state
func (s *Session) Host(id int) (HostView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, err := s.pop.Host(id)
	if err != nil {
		return HostView{}, err
	}
	return HostView{
		ID:        h.ID(),
		State:     h.State(),
		Age:       h.Age(),
		Port:      h.Port(),
		Occupancy: h.Grid().Fraction(),
		Severity:  h.Virus().Severity(),
		Strain:    h.Virus().Strain(),
		Neighbors: append([]int(nil), s.pop.Topology().Neighbors(id)...),
	}, nil
}

// RunState reports progress for health checks
func (s *Session) RunState() health.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return health.RunState{
		Tick:     s.pop.Tick(),
		Finished: s.pop.Finished(),
		LastStep: s.lastStep,
		Infected: s.pop.Counts().Infected,
		Hosts:    s.pop.Size(),
	}
}

// Subscribe streams snapshots of the session. The subscription outlives
// Reset: the next run's snapshots arrive on the same channel.
func (s *Session) Subscribe(ctx context.Context) (*pubsub.Subscription[epidemic.Snapshot], error) {
	return s.broker.Subscribe(ctx, StreamTopic)
}

// Subscribers returns the number of open snapshot subscriptions
func (s *Session) Subscribers() int {
	return s.broker.GetSubscriberCount(StreamTopic)
}

// Broker exposes the snapshot pubsub for health checks
func (s *Session) Broker() *pubsub.PubSub[epidemic.Snapshot] {
	return s.broker
}

// Close ends every snapshot subscription
func (s *Session) Close() {
	s.broker.Shutdown()
}
