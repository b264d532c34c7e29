package epidemic

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Counts aggregates hosts per health state
type Counts struct {
	Susceptible int `json:"susceptible"`
	Infected    int `json:"infected"`
	Resistant   int `json:"resistant"`
	Dead        int `json:"dead"`
}

// Total returns the number of hosts counted
func (c Counts) Total() int {
	return c.Susceptible + c.Infected + c.Resistant + c.Dead
}

// Of returns the count for one state
func (c Counts) Of(s HealthState) int {
	switch s {
	case Susceptible:
		return c.Susceptible
	case Infected:
		return c.Infected
	case Resistant:
		return c.Resistant
	case Dead:
		return c.Dead
	default:
		return 0
	}
}

func (c *Counts) add(s HealthState) {
	switch s {
	case Susceptible:
		c.Susceptible++
	case Infected:
		c.Infected++
	case Resistant:
		c.Resistant++
	case Dead:
		c.Dead++
	}
}

// ResistantSusceptibleRatio returns resistant/susceptible, defined as +Inf
// when there are no susceptible hosts.
func (c Counts) ResistantSusceptibleRatio() float64 {
	if c.Susceptible == 0 {
		return math.Inf(1)
	}
	return float64(c.Resistant) / float64(c.Susceptible)
}

// TickEvents counts the state transitions that happened during one tick
type TickEvents struct {
	Infections    int `json:"infections"`
	Immunizations int `json:"immunizations"`
	Demotions     int `json:"demotions"`
	Deaths        int `json:"deaths"`
}

// Ratio is a float that encodes +Inf as the JSON string "+Inf".
type Ratio float64

// MarshalJSON implements json.Marshaler
func (r Ratio) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(r), 1) {
		return []byte(`"+Inf"`), nil
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*r = Ratio(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// Snapshot is the per-tick report handed to observers
type Snapshot struct {
	RunID    string        `json:"run_id"`
	Tick     int           `json:"tick"`
	Counts   Counts        `json:"counts"`
	Ratio    Ratio         `json:"resistant_susceptible_ratio"`
	Events   TickEvents    `json:"events"`
	Peak     int           `json:"peak_infected"`
	Finished bool          `json:"finished"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Snapshot returns the current report without advancing the population.
func (p *Population) Snapshot() Snapshot {
	return Snapshot{
		RunID:    p.id,
		Tick:     p.tick,
		Counts:   p.counts,
		Ratio:    Ratio(p.counts.ResistantSusceptibleRatio()),
		Events:   p.events,
		Peak:     p.peakInfected,
		Finished: p.finished,
	}
}
