package epidemic

import (
	"math"

	"github.com/dd0wney/virusnet/pkg/randvar"
)

// defaultResistanceRatio applies when the attached virus has no live severity.
const defaultResistanceRatio = 0.6

func resistanceFactor(s Severity) (float64, bool) {
	switch s {
	case Weak:
		return 0.3, true
	case Regular:
		return 0.6, true
	case Moderate:
		return 0.9, true
	case Mortal:
		return 1.2, true
	default:
		return 0, false
	}
}

// gainResistance recomputes the host's recovery chance from the virus
// severity and, on a successful draw, clears a proportional number of cells.
// Cleared cells are drawn without redrawing misses, so the cure is usually
// partial. The returned state is the host's classification afterwards; the
// caller decides whether to apply it.
func (p *Population) gainResistance(h *Host) HealthState {
	ratio := defaultResistanceRatio
	if factor, ok := resistanceFactor(h.virus.severity); ok {
		ratio = factor * h.gainResistance
	}
	h.recovery = ratio

	if randvar.Chance(p.src, ratio) {
		count := int(math.Floor(float64(h.grid.CountSet()) * ratio))
		if count < 0 {
			count = 0
		}
		h.grid.FlipRandomCellsOff(p.src, count)
	}

	if h.grid.Fraction() > cureThreshold {
		return Resistant
	}
	return Infected
}
