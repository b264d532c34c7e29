package ensemble

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Stat is the mean, minimum and maximum of one quantity across replicates
type Stat struct {
	Mean float64 `json:"mean" yaml:"mean"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// Summary aggregates the successful replicates of an ensemble
type Summary struct {
	Replicates  int         `json:"replicates" yaml:"replicates"`
	Cleared     int         `json:"cleared" yaml:"cleared"`
	Failed      int         `json:"failed" yaml:"failed"`
	Ticks       Stat        `json:"ticks" yaml:"ticks"`
	Peak        Stat        `json:"peak_infected" yaml:"peak_infected"`
	Susceptible Stat        `json:"susceptible" yaml:"susceptible"`
	Infected    Stat        `json:"infected" yaml:"infected"`
	Resistant   Stat        `json:"resistant" yaml:"resistant"`
	Dead        Stat        `json:"dead" yaml:"dead"`
	DurationMS  Stat        `json:"duration_ms" yaml:"duration_ms"`
	Results     []Replicate `json:"results" yaml:"results"`
}

type accumulator struct {
	n             int
	sum, min, max float64
}

func (a *accumulator) add(v float64) {
	if a.n == 0 {
		a.min, a.max = math.Inf(1), math.Inf(-1)
	}
	a.n++
	a.sum += v
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
}

func (a *accumulator) stat() Stat {
	if a.n == 0 {
		return Stat{}
	}
	return Stat{Mean: a.sum / float64(a.n), Min: a.min, Max: a.max}
}

// Summarize aggregates replicates. Failed replicates are counted but left
// out of the statistics.
func Summarize(results []Replicate) *Summary {
	s := &Summary{Replicates: len(results), Results: results}

	var ticks, peak, sus, inf, res, dead, dur accumulator
	for _, r := range results {
		if r.Err != "" {
			s.Failed++
			continue
		}
		if r.Cleared {
			s.Cleared++
		}
		ticks.add(float64(r.Ticks))
		peak.add(float64(r.Peak))
		sus.add(float64(r.Final.Susceptible))
		inf.add(float64(r.Final.Infected))
		res.add(float64(r.Final.Resistant))
		dead.add(float64(r.Final.Dead))
		dur.add(float64(r.Duration.Microseconds()) / 1000)
	}

	s.Ticks = ticks.stat()
	s.Peak = peak.stat()
	s.Susceptible = sus.stat()
	s.Infected = inf.stat()
	s.Resistant = res.stat()
	s.Dead = dead.stat()
	s.DurationMS = dur.stat()
	return s
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)
)

// Render draws the summary as a table
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("%-14s %10s %10s %10s", "", "mean", "min", "max")))

	rows := []struct {
		name string
		stat Stat
	}{
		{"ticks", s.Ticks},
		{"peak infected", s.Peak},
		{"susceptible", s.Susceptible},
		{"infected", s.Infected},
		{"resistant", s.Resistant},
		{"dead", s.Dead},
		{"duration ms", s.DurationMS},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%-14s %10.2f %10.2f %10.2f\n", row.name, row.stat.Mean, row.stat.Min, row.stat.Max)
	}
	fmt.Fprintf(&b, "replicates %d · cleared %d · failed %d", s.Replicates, s.Cleared, s.Failed)

	return tableStyle.Render(b.String())
}
