package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/topology"
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1).
			MarginRight(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	stateStyles = map[epidemic.HealthState]lipgloss.Style{
		epidemic.Susceptible: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		epidemic.Infected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		epidemic.Resistant:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		epidemic.Dead:        lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
)

// FormatRatio renders a resistant/susceptible ratio, spelling out +Inf
func FormatRatio(r float64) string {
	if math.IsInf(r, 1) {
		return "+Inf"
	}
	return fmt.Sprintf("%.3f", r)
}

// RenderSummary draws the final state of a run next to its network shape
func RenderSummary(s epidemic.Snapshot, stats topology.Statistics) string {
	var counts strings.Builder
	for _, state := range epidemic.States {
		fmt.Fprintf(&counts, "%s %d\n",
			stateStyles[state].Render(fmt.Sprintf("%-12s", state)),
			s.Counts.Of(state))
	}
	fmt.Fprintf(&counts, "%s %s\n", LabelStyle.Render(fmt.Sprintf("%-12s", "R/S ratio")), FormatRatio(float64(s.Ratio)))
	fmt.Fprintf(&counts, "%s %d", LabelStyle.Render(fmt.Sprintf("%-12s", "peak")), s.Peak)

	network := fmt.Sprintf("%s %d\n%s %d\n%s %.2f\n%s %d\n%s %d",
		LabelStyle.Render(fmt.Sprintf("%-12s", "nodes")), stats.NodeCount,
		LabelStyle.Render(fmt.Sprintf("%-12s", "edges")), stats.EdgeCount,
		LabelStyle.Render(fmt.Sprintf("%-12s", "mean degree")), stats.AverageDegree,
		LabelStyle.Render(fmt.Sprintf("%-12s", "components")), stats.Components,
		LabelStyle.Render(fmt.Sprintf("%-12s", "largest")), stats.LargestCluster,
	)

	status := "running"
	if s.Finished {
		status = "cleared"
	}
	title := TitleStyle.Render(fmt.Sprintf("run %s · tick %d · %s", s.RunID, s.Tick, status))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top,
			BoxStyle.Render(counts.String()),
			BoxStyle.Render(network),
		),
	)
}
