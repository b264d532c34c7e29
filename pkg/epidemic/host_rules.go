package epidemic

import (
	"fmt"

	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/randvar"
)

// stepHost runs one activation of h. Neighbour mutations are applied
// immediately and are visible to hosts activated later in the same tick.
func (p *Population) stepHost(h *Host) {
	switch h.state {
	case Infected:
		p.stepInfected(h)
	case Resistant:
		p.stepResistant(h)
	case Susceptible:
		p.stepSusceptible(h)
	case Dead:
		// terminal
	default:
		panic(fmt.Sprintf("epidemic: host %d in unknown state %v", h.id, h.state))
	}
}

func (p *Population) stepInfected(h *Host) {
	v := h.virus
	neighbors := p.graph.Neighbors(h.id)

	for _, id := range neighbors {
		if n := &p.hosts[id]; n.state == Susceptible {
			p.attack(n, v)
		}
	}

	// Resistant neighbours are collected after the attack pass, so hosts the
	// antivirus just caught are probed too.
	for _, id := range neighbors {
		if n := &p.hosts[id]; n.state == Resistant {
			p.probe(n, v)
		}
	}

	v.AttemptInfectHost(h, p.src)

	if h.grid.Fraction() > deathThreshold {
		p.kill(h)
		return
	}

	p.selfCheck(h)
}

// attack tries to move a susceptible neighbour onto v. Neighbours whose
// recovery chance already matches the spread are left alone; otherwise a
// sufficiently frequent antivirus check immunizes instead of infecting.
func (p *Population) attack(n *Host, v *Virus) {
	if n.recovery >= v.spread {
		return
	}
	if n.checkFrequency > v.spread {
		p.immunize(n)
		return
	}
	p.infect(n, v)
}

// probe tests a resistant neighbour's antivirus. A matching port key or a
// draw under the neighbour's own recovery chance marks its signatures stale.
// The virus picks a new port after every probe.
func (p *Population) probe(n *Host, v *Virus) {
	matched := v.port == n.port
	v.port = randvar.Between(p.src, 0, p.cfg.PortKeySpace)

	if matched || randvar.Chance(p.src, n.recovery) {
		p.demote(n)
	}
}

// selfCheck lets the host's antivirus try to remove the infection when it
// audits more often than the virus does.
func (p *Population) selfCheck(h *Host) {
	if h.virus.checkFrequency >= h.checkFrequency {
		return
	}

	removal := ageScale(h.age) - h.recovery
	if !randvar.Chance(p.src, removal) {
		return
	}

	switch p.gainResistance(h) {
	case Resistant:
		p.immunize(h)
	case Infected:
		// partial cure, still infected
	}
}

func (p *Population) stepResistant(h *Host) {
	if h.virus.checkFrequency >= h.checkFrequency {
		return
	}
	if randvar.Chance(p.src, h.staleness) {
		p.demote(h)
	}
}

// stepSusceptible hardens idle hosts: the resistance computation refreshes
// the recovery chance, then a draw above it promotes the host to resistant.
func (p *Population) stepSusceptible(h *Host) {
	p.gainResistance(h)
	if p.src.Float64() > h.recovery {
		p.immunize(h)
	}
}

func (p *Population) infect(h *Host, v *Virus) {
	h.virus = v
	p.transition(h, Infected)
}

// immunize locks the whole grid and drops the infection.
func (p *Population) immunize(h *Host) {
	h.grid.Lock()
	h.virus = p.dormant()
	p.transition(h, Resistant)
}

// demote returns a host to susceptible with a clean grid.
func (p *Population) demote(h *Host) {
	h.grid.Clear()
	h.virus = p.dormant()
	p.transition(h, Susceptible)
}

// kill marks the host as fully compromised. Dead is terminal.
func (p *Population) kill(h *Host) {
	h.grid.Saturate()
	h.virus = p.dormant()
	p.transition(h, Dead)
}

func (p *Population) transition(h *Host, to HealthState) {
	from := h.state
	if from == to {
		return
	}
	h.state = to

	switch to {
	case Infected:
		p.events.Infections++
	case Resistant:
		p.events.Immunizations++
	case Susceptible:
		p.events.Demotions++
	case Dead:
		p.events.Deaths++
	}

	if p.debug {
		p.logger.Debug("host transition",
			logging.Tick(p.tick+1),
			logging.HostID(h.id),
			logging.String("from", from.String()),
			logging.State(to.String()),
		)
	}
}
