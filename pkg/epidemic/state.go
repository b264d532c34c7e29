package epidemic

import (
	"fmt"
)

// HealthState is the condition of a host. Every host is in exactly one state.
type HealthState uint8

const (
	Susceptible HealthState = iota
	Infected
	Resistant
	Dead
)

// States lists every health state in reporting order
var States = []HealthState{Susceptible, Infected, Resistant, Dead}

func (s HealthState) String() string {
	switch s {
	case Susceptible:
		return "SUSCEPTIBLE"
	case Infected:
		return "INFECTED"
	case Resistant:
		return "RESISTANT"
	case Dead:
		return "DEAD"
	default:
		return fmt.Sprintf("HealthState(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s HealthState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Severity is the aggressiveness tier of a virus, derived from how much of
// its host's memory grid it occupies. SeverityDead marks the dormant
// placeholder carried by hosts without an active infection.
type Severity uint8

const (
	Weak Severity = iota
	Regular
	Moderate
	Mortal
	SeverityDead
)

func (s Severity) String() string {
	switch s {
	case Weak:
		return "WEAK"
	case Regular:
		return "REGULAR"
	case Moderate:
		return "MODERATE"
	case Mortal:
		return "MORTAL"
	case SeverityDead:
		return "DEAD"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
