package epidemic

import (
	"github.com/dd0wney/virusnet/pkg/memory"
)

// Host is one simulated machine. It occupies the graph node with the same id
// for the lifetime of the population.
type Host struct {
	id             int
	state          HealthState
	age            int
	recovery       float64
	gainResistance float64
	checkFrequency float64
	staleness      float64
	port           int
	grid           *memory.Grid
	virus          *Virus
}

// ID returns the host's graph node id
func (h *Host) ID() int { return h.id }

// State returns the current health state
func (h *Host) State() HealthState { return h.state }

// Age returns the machine age in years
func (h *Host) Age() int { return h.age }

// RecoveryChance returns the recovery chance last computed for the host
func (h *Host) RecoveryChance() float64 { return h.recovery }

// GainResistance returns the base resistance-gain probability
func (h *Host) GainResistance() float64 { return h.gainResistance }

// CheckFrequency returns how often the host's antivirus audits it
func (h *Host) CheckFrequency() float64 { return h.checkFrequency }

// StalenessChance returns the chance a resistant host's antivirus goes stale
func (h *Host) StalenessChance() float64 { return h.staleness }

// Port returns the host's port key
func (h *Host) Port() int { return h.port }

// Grid returns the host's memory grid. Callers must treat it as read-only.
func (h *Host) Grid() *memory.Grid { return h.grid }

// Virus returns the attached virus, which is a dormant placeholder unless
// the host is infected.
func (h *Host) Virus() *Virus { return h.virus }
