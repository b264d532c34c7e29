package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/report"
	"github.com/dd0wney/virusnet/pkg/topology"
)

// hub is one high-degree node in the topology report
type hub struct {
	ID         int     `json:"id"`
	Degree     int     `json:"degree"`
	Centrality float64 `json:"centrality"`
}

type topologyReport struct {
	Seed  uint64              `json:"seed"`
	Stats topology.Statistics `json:"stats"`
	Hubs  []hub               `json:"hubs"`
}

func newTopologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Describe the network a run with this configuration would use",
		Long: `Generate the random network for the effective configuration and seed, then
print its degree and connectivity statistics and the best connected hosts.
The network is identical to the one "virusnet run" builds with the same seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			g, err := topology.ErdosRenyi{}.Generate(cfg.NodeCount, cfg.AverageDegree, randvar.New(cfg.Seed))
			if err != nil {
				return err
			}

			rep := topologyReport{
				Seed:  cfg.Seed,
				Stats: topology.Stats(g),
				Hubs:  topHubs(g, top),
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), rep)
			}

			lines := []string{report.TitleStyle.Render("Network")}
			lines = append(lines,
				row("nodes", fmt.Sprint(rep.Stats.NodeCount)),
				row("edges", fmt.Sprint(rep.Stats.EdgeCount)),
				row("avg degree", fmt.Sprintf("%.2f", rep.Stats.AverageDegree)),
				row("max degree", fmt.Sprint(rep.Stats.MaxDegree)),
				row("isolated", fmt.Sprint(rep.Stats.IsolatedNodes)),
				row("components", fmt.Sprint(rep.Stats.Components)),
				row("largest", fmt.Sprint(rep.Stats.LargestCluster)),
			)
			if len(rep.Hubs) > 0 {
				lines = append(lines, "", report.TitleStyle.Render("Hubs"))
				for _, h := range rep.Hubs {
					lines = append(lines, row(fmt.Sprintf("host %d", h.ID), fmt.Sprintf("%d (%.3f)", h.Degree, h.Centrality)))
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
			return nil
		},
	}

	cmd.Flags().Int("top", 5, "Number of highest-degree hosts to list")

	return cmd
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, report.LabelStyle.Width(12).Render(label), value)
}

// topHubs returns the n highest-degree nodes, ties broken by id.
func topHubs(g *topology.Graph, n int) []hub {
	centrality := topology.DegreeCentrality(g)
	hubs := make([]hub, 0, len(centrality))
	for id, c := range centrality {
		hubs = append(hubs, hub{ID: id, Degree: g.Degree(id), Centrality: c})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].ID < hubs[j].ID
	})
	if n < 0 {
		n = 0
	}
	if n < len(hubs) {
		hubs = hubs[:n]
	}
	return hubs
}
