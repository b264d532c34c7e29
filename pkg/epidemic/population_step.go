package epidemic

import (
	"context"
	"time"

	"github.com/dd0wney/virusnet/pkg/logging"
)

// Step advances the population by one tick and reports whether it did. When
// no host is infected the run is marked finished and Step leaves every count
// unchanged, now and on every later call.
func (p *Population) Step() bool {
	if p.finished {
		return false
	}
	if p.counts.Infected == 0 {
		p.finished = true
		p.events = TickEvents{}
		p.logger.Info("run finished",
			logging.Tick(p.tick),
			logging.Int("peak_infected", p.peakInfected),
			logging.Ratio(p.ResistantSusceptibleRatio()),
		)
		p.publish()
		return false
	}

	start := time.Now()
	p.events = TickEvents{}

	for _, id := range p.src.Perm(len(p.hosts)) {
		p.stepHost(&p.hosts[id])
	}

	p.tick++
	p.recount()
	p.publishElapsed(time.Since(start))
	return true
}

// Run advances up to n ticks, stopping early once the run is finished. It
// returns the number of ticks actually advanced.
func (p *Population) Run(n int) int {
	advanced := 0
	for advanced < n && p.Step() {
		advanced++
	}
	return advanced
}

// RunUntilClear steps until no host is infected. maxSteps <= 0 means no
// bound. Cancellation is checked between ticks, never inside one.
func (p *Population) RunUntilClear(ctx context.Context, maxSteps int) (int, error) {
	advanced := 0
	for {
		if err := ctx.Err(); err != nil {
			return advanced, err
		}
		if maxSteps > 0 && advanced >= maxSteps {
			return advanced, nil
		}
		if !p.Step() {
			return advanced, nil
		}
		advanced++
	}
}

func (p *Population) recount() {
	var c Counts
	for i := range p.hosts {
		c.add(p.hosts[i].state)
	}
	p.counts = c
	if c.Infected > p.peakInfected {
		p.peakInfected = c.Infected
	}
}

func (p *Population) publish() {
	p.publishElapsed(0)
}

func (p *Population) publishElapsed(elapsed time.Duration) {
	if len(p.observers) == 0 {
		return
	}
	snap := p.Snapshot()
	snap.Elapsed = elapsed
	for _, o := range p.observers {
		o.Observe(snap)
	}
}
