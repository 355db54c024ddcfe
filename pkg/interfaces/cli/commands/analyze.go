package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	"github.com/vsinha/supplyadvisor/pkg/interfaces/cli/output"
)

func newAnalyzeCommand(opts *GlobalOptions) *cobra.Command {
	var (
		product  productFlags
		topPaths int
		gantt    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Comprehensive production analysis with the critical path",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := product.request()
			if err != nil {
				return err
			}
			return opts.withEnvironment(cmd, func(env *Environment, p *output.Printer) error {
				result, err := env.Orchestrator.RunCompletePlanning(cmd.Context(), req, topPaths)
				if err != nil {
					return err
				}
				if gantt != "" {
					if err := writeGantt(gantt, result); err != nil {
						return err
					}
				}
				return p.Planning(result)
			})
		},
	}

	product.register(cmd)
	cmd.Flags().IntVar(&topPaths, "top-paths", 3, "Number of delivery paths to list (0 for all)")
	cmd.Flags().StringVar(&gantt, "gantt", "", "Write the purchase plan as an SVG Gantt chart to this file")
	return cmd
}

func writeGantt(filename string, result *orchestration.PlanningResult) error {
	var bottleneck string
	if result.CriticalPath != nil {
		bottleneck = result.CriticalPath.CriticalPath.Bottleneck
	}
	plan := result.Report.PurchasePlan
	return output.NewGanttChart(plan, bottleneck).WriteFile(filename, plan)
}
