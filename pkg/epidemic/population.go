// Package epidemic implements the virus/antivirus state-transition engine
// and the random-sequential scheduler that advances a population of hosts
// over a network.
package epidemic

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/memory"
	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/topology"
)

// ErrUnknownHost is returned when a host id is outside the population.
var ErrUnknownHost = errors.New("unknown host")

// Observer receives a snapshot after seeding and after every tick.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Snapshot)

// Observe calls f.
func (f ObserverFunc) Observe(s Snapshot) { f(s) }

// Population owns the network and one host per node. It is not safe for
// concurrent use: ticks run strictly one host activation at a time.
type Population struct {
	id     string
	cfg    config.Config
	src    randvar.Source
	graph  *topology.Graph
	hosts  []Host
	counts Counts
	events TickEvents

	tick         int
	finished     bool
	peakInfected int
	strains      int

	provider  topology.Provider
	observers []Observer
	logger    logging.Logger
	debug     bool
}

// Option configures a Population.
type Option func(*Population)

// WithProvider replaces the default Erdős–Rényi topology provider.
func WithProvider(provider topology.Provider) Option {
	return func(p *Population) { p.provider = provider }
}

// WithObserver registers observers for every snapshot.
func WithObserver(observers ...Observer) Option {
	return func(p *Population) { p.observers = append(p.observers, observers...) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(p *Population) { p.logger = logger }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(p *Population) { p.id = id }
}

// New builds the topology, creates one susceptible host per node and seeds
// the initial outbreak, antivirus and dead sets. Seed counts larger than the
// node count are clamped. The three seed sets are drawn independently and
// may overlap; later passes overwrite earlier ones.
func New(cfg config.Config, src randvar.Source, opts ...Option) (*Population, error) {
	p := &Population{
		id:       uuid.New().String(),
		src:      src,
		provider: topology.ErdosRenyi{},
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logging.Component("population"), logging.RunID(p.id))
	p.debug = p.logger.GetLevel() <= logging.DebugLevel

	graph, err := p.provider.Generate(cfg.NodeCount, cfg.AverageDegree, src)
	if err != nil {
		return nil, fmt.Errorf("failed to generate topology: %w", err)
	}
	p.graph = graph

	// The provider decides the final size.
	cfg.NodeCount = graph.NodeCount()
	for _, field := range cfg.Normalize() {
		p.logger.Warn("configuration value clamped", logging.String("field", field))
	}
	p.cfg = cfg

	p.hosts = make([]Host, graph.NodeCount())
	for id := range p.hosts {
		p.hosts[id] = Host{
			id:             id,
			state:          Susceptible,
			age:            randvar.Between(src, cfg.AgeRange.Min, cfg.AgeRange.Max),
			recovery:       cfg.BaseRecoveryChance,
			gainResistance: cfg.GainResistanceChanceHost,
			checkFrequency: cfg.AntivirusCheckFrequency,
			staleness:      cfg.AntivirusStalenessChance,
			port:           randvar.Between(src, 0, cfg.PortKeySpace),
			grid:           memory.New(cfg.GridRows, cfg.GridCols),
		}
		p.hosts[id].virus = p.dormant()
	}

	p.seed()
	p.recount()

	p.logger.Info("population seeded",
		logging.Int("nodes", graph.NodeCount()),
		logging.Int("edges", graph.EdgeCount()),
		logging.Int("infected", p.counts.Infected),
		logging.Int("resistant", p.counts.Resistant),
		logging.Int("dead", p.counts.Dead),
	)
	p.publish()
	return p, nil
}

func (p *Population) seed() {
	n := len(p.hosts)

	for _, id := range randvar.Sample(p.src, n, p.cfg.InitialOutbreakSize) {
		h := &p.hosts[id]
		h.state = Infected
		h.virus = p.newStrain(h)
		h.grid.Scatter(p.src, seedDensity)
		h.virus.refreshSeverity(h.grid)
	}

	for _, id := range randvar.Sample(p.src, n, p.cfg.InitialAntivirusSize) {
		h := &p.hosts[id]
		h.state = Resistant
		h.grid.Lock()
		h.virus = p.dormant()
	}

	for _, id := range randvar.Sample(p.src, n, p.cfg.InitialDeadCount) {
		h := &p.hosts[id]
		h.state = Dead
		h.grid.Saturate()
		h.virus = p.dormant()
	}
}

// newStrain creates a live Weak virus keyed to its origin host's port.
func (p *Population) newStrain(origin *Host) *Virus {
	p.strains++
	return &Virus{
		strain:         p.strains,
		spread:         p.cfg.VirusSpreadChance,
		checkFrequency: p.cfg.VirusCheckFrequency,
		gainResistance: p.cfg.GainResistanceChanceVirus,
		severity:       Weak,
		port:           origin.port,
	}
}

// dormant creates the placeholder attached to hosts with no active infection.
func (p *Population) dormant() *Virus {
	return &Virus{
		checkFrequency: p.cfg.VirusCheckFrequency,
		gainResistance: p.cfg.GainResistanceChanceVirus,
		severity:       SeverityDead,
		port:           -1,
	}
}

// ID returns the run id
func (p *Population) ID() string { return p.id }

// Config returns the normalized configuration the population runs with
func (p *Population) Config() config.Config { return p.cfg }

// Topology returns the read-only network
func (p *Population) Topology() *topology.Graph { return p.graph }

// Size returns the number of hosts
func (p *Population) Size() int { return len(p.hosts) }

// Tick returns the number of completed ticks
func (p *Population) Tick() int { return p.tick }

// Finished reports whether a step found no infected hosts left
func (p *Population) Finished() bool { return p.finished }

// Counts returns the aggregate counts as of the last tick
func (p *Population) Counts() Counts { return p.counts }

// PeakInfected returns the highest infected count seen so far
func (p *Population) PeakInfected() int { return p.peakInfected }

// Strains returns how many virus strains were seeded
func (p *Population) Strains() int { return p.strains }

// Host returns the host on node id. The host must not be modified.
func (p *Population) Host(id int) (*Host, error) {
	if id < 0 || id >= len(p.hosts) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHost, id)
	}
	return &p.hosts[id], nil
}

// States returns every host's state indexed by node id.
func (p *Population) States() []HealthState {
	out := make([]HealthState, len(p.hosts))
	for i := range p.hosts {
		out[i] = p.hosts[i].state
	}
	return out
}

// ResistantSusceptibleRatio returns resistant/susceptible, or +Inf when no
// host is susceptible.
func (p *Population) ResistantSusceptibleRatio() float64 {
	return p.counts.ResistantSusceptibleRatio()
}
