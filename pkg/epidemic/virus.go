package epidemic

import (
	"math"

	"github.com/dd0wney/virusnet/pkg/memory"
	"github.com/dd0wney/virusnet/pkg/randvar"
)

// Grid occupancy thresholds
const (
	weakThreshold     = 0.25
	regularThreshold  = 0.50
	moderateThreshold = 0.75
	deathThreshold    = 0.75
	cureThreshold     = 0.25
	seedDensity       = 0.10
)

// Virus is the pathogen attached to a host. Hosts infected from the same
// source share one Virus value; a host that stops being infected gets a
// fresh dormant placeholder instead of mutating the shared one.
type Virus struct {
	strain         int
	spread         float64
	checkFrequency float64
	gainResistance float64
	severity       Severity
	port           int
}

// Strain identifies the outbreak seed this virus descends from; 0 for a
// dormant placeholder.
func (v *Virus) Strain() int { return v.strain }

// Spread returns the current spread probability
func (v *Virus) Spread() float64 { return v.spread }

// CheckFrequency returns how often the virus checks its own situation
func (v *Virus) CheckFrequency() float64 { return v.checkFrequency }

// GainResistance returns the virus' resistance-gain probability
func (v *Virus) GainResistance() float64 { return v.gainResistance }

// Severity returns the last classified severity
func (v *Virus) Severity() Severity { return v.severity }

// Port returns the port key the virus probes resistant hosts with
func (v *Virus) Port() int { return v.port }

// IsDormant reports whether v is a placeholder for "no active infection".
func (v *Virus) IsDormant() bool { return v.severity == SeverityDead }

// ageScale maps host age to the multiplier shared by virus growth and
// infection removal.
func ageScale(age int) float64 {
	switch {
	case age < 3:
		return 0.4
	case age < 6:
		return 0.8
	case age < 10:
		return 1.2
	default:
		return 0.2
	}
}

// footprint is the share of the grid a virus of a given severity claims per tick.
func footprint(s Severity) float64 {
	switch s {
	case Weak:
		return 0.01
	case Regular:
		return 0.10
	case Moderate:
		return 0.36
	case Mortal:
		return 0.51
	default:
		return 0
	}
}

// AttemptInfectHost grows the virus inside host and reclassifies its
// severity. The spread probability is rescaled by the host's age factor on
// every call.
func (v *Virus) AttemptInfectHost(h *Host, src randvar.Source) {
	if v.IsDormant() {
		return
	}
	ratio := ageScale(h.age)
	growth := ratio * v.spread
	v.spread *= ratio
	v.growFootprint(h.grid, src, growth)
	v.refreshSeverity(h.grid)
}

// growFootprint claims floor(Total*share) cells for the severity plus
// floor(growth) extra cells.
func (v *Virus) growFootprint(grid *memory.Grid, src randvar.Source, growth float64) {
	share := footprint(v.severity)
	if share == 0 {
		return
	}
	count := int(math.Floor(float64(grid.Total()) * share))
	if growth > 0 {
		count += int(math.Floor(growth))
	}
	grid.SetRandomCellsOn(src, count)
}

func (v *Virus) refreshSeverity(grid *memory.Grid) {
	v.severity = ClassifySeverity(grid.Fraction(), v.severity)
}

// ClassifySeverity maps grid occupancy to a severity, checking the bands from
// the lowest threshold upwards and keeping the first match. Occupancy at or
// below 25% matches no band and leaves current unchanged; only a fully
// saturated grid is Mortal.
func ClassifySeverity(fraction float64, current Severity) Severity {
	switch {
	case fraction <= weakThreshold:
		return current
	case fraction <= regularThreshold:
		return Weak
	case fraction <= moderateThreshold:
		return Regular
	case fraction < 1:
		return Moderate
	default:
		return Mortal
	}
}
